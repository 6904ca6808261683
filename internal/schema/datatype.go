package schema

import "github.com/crypto-data/freeze/internal/errs"

// Datatype identifies one extractable dataset. Go has no enum-with-payload
// like the source's Rust sum type, so each variant's static metadata is
// looked up from the registry built in init() below rather than carried as
// an associated const on the variant itself.
type Datatype int

const (
	Blocks Datatype = iota
	Transactions
	Logs
	Traces
	Contracts
	NativeTransfers
	Erc20Transfers
	Erc721Transfers
	Erc20Metadata
	Erc721Metadata
	Erc20Supplies
	FourByteCounts
	EthCalls
	Balances
	Nonces
	Codes
	Slots
	BalanceDiffs
	CodeDiffs
	NonceDiffs
	StorageDiffs
	BalanceReads
	CodeReads
	NonceReads
	StorageReads
	JsTraces
)

// Dimension is a user-supplied axis of a partition.
type Dimension int

const (
	DimBlockNumber Dimension = iota
	DimBlockRange
	DimTransactionHash
	DimAddress
	DimContract
	DimSlot
	DimTopic0
	DimTopic1
	DimTopic2
	DimTopic3
	DimCallData
)

// Descriptor is the static metadata attached to one Datatype: its name,
// aliases, default/ all column set with types, default sort order, and the
// dimensions its collector consumes.
type Descriptor struct {
	Name             string
	Aliases          []string
	ColumnTypes      map[string]ColumnType
	DefaultColumns   []string
	SortColumns      []string
	RequiredDims     []Dimension
	OptionalDims     []Dimension
	ByBlock          bool
	ByTransaction    bool
	UsesBlockRanges  bool // whole-range requests (logs, transfers) vs per-number (most others)
}

var registry = map[Datatype]*Descriptor{}

func register(dt Datatype, d *Descriptor) {
	registry[dt] = d
}

// Lookup returns the Descriptor for dt, or an error if dt is unregistered.
func Lookup(dt Datatype) (*Descriptor, error) {
	d, ok := registry[dt]
	if !ok {
		return nil, errs.Collect("unregistered datatype")
	}
	return d, nil
}

// ByName resolves a datatype's registered Name or one of its Aliases
// (the CLI's accepted spelling, e.g. "block" for Blocks) back to its
// Datatype constant.
func ByName(name string) (Datatype, error) {
	for dt, d := range registry {
		if d.Name == name {
			return dt, nil
		}
		for _, alias := range d.Aliases {
			if alias == name {
				return dt, nil
			}
		}
	}
	return 0, errs.Parse("unknown datatype: "+name, nil)
}

// HasColumn reports whether the datatype's registered column set contains
// name, independent of any particular schema projection.
func (d *Descriptor) HasColumn(name string) bool {
	_, ok := d.ColumnTypes[name]
	return ok
}

func init() {
	registerBlocks()
	registerTransactions()
	registerLogs()
	registerTraces()
	registerDerivedFromTraces()
	registerTransfers()
	registerErc20Metadata()
	registerErc721Metadata()
	registerErc20Supplies()
	registerFourByteCounts()
	registerEthCalls()
	registerAccountState()
	registerSlots()
	registerStateDiffs()
	registerStateReads()
	registerJsTraces()
}
