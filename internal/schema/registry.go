package schema

import "sort"

// registerBlocks describes the Blocks datatype: one row per block header.
func registerBlocks() {
	cols := map[string]ColumnType{
		"block_number":     UInt32,
		"hash":             Binary,
		"parent_hash":      Binary,
		"author":           Binary,
		"state_root":       Binary,
		"transactions_root": Binary,
		"receipts_root":    Binary,
		"gas_used":         UInt64,
		"extra_data":       Binary,
		"logs_bloom":       Binary,
		"timestamp":        UInt32,
		"total_difficulty": U256,
		"size":             UInt32,
		"base_fee_per_gas": UInt64,
		"chain_id":         UInt64,
	}
	register(Blocks, &Descriptor{
		Name:           "blocks",
		Aliases:        []string{"block"},
		ColumnTypes:    cols,
		DefaultColumns: keysOf(cols, "total_difficulty"),
		SortColumns:    []string{"block_number"},
		RequiredDims:   []Dimension{DimBlockNumber},
		ByBlock:        true,
	})
}

// registerTransactions describes per-transaction rows, whether reached by
// iterating a fetched block's body or by direct transaction-hash lookup.
func registerTransactions() {
	cols := map[string]ColumnType{
		"block_number":             UInt32,
		"transaction_index":        UInt32,
		"transaction_hash":         Binary,
		"nonce":                    UInt64,
		"from_address":             Binary,
		"to_address":               Binary,
		"value_binary":             Binary,
		"value_string":             String,
		"value_f64":                Float64,
		"value_decimal":            Decimal128,
		"input":                    Binary,
		"gas_limit":                UInt64,
		"gas_price":                UInt64,
		"gas_used":                 UInt64,
		"max_priority_fee_per_gas": UInt64,
		"max_fee_per_gas":          UInt64,
		"transaction_type":         UInt32,
		"chain_id":                 UInt64,
	}
	register(Transactions, &Descriptor{
		Name: "transactions",
		Aliases: []string{"txs", "transaction"},
		ColumnTypes: cols,
		DefaultColumns: []string{
			"block_number", "transaction_index", "transaction_hash", "nonce",
			"from_address", "to_address", "value_binary", "input", "gas_limit",
			"gas_price", "gas_used", "transaction_type", "chain_id",
		},
		SortColumns:   []string{"block_number", "transaction_index"},
		RequiredDims:  []Dimension{DimBlockNumber},
		OptionalDims:  []Dimension{DimTransactionHash},
		ByBlock:       true,
		ByTransaction: true,
	})
}

func registerLogs() {
	cols := map[string]ColumnType{
		"block_number":     UInt32,
		"transaction_index": UInt32,
		"log_index":        UInt32,
		"transaction_hash": Binary,
		"address":          Binary,
		"topic0":           Binary,
		"topic1":           Binary,
		"topic2":           Binary,
		"topic3":           Binary,
		"data":             Binary,
		"chain_id":         UInt64,
	}
	register(Logs, &Descriptor{
		Name: "logs",
		Aliases: []string{"events", "log"},
		ColumnTypes: cols,
		DefaultColumns: []string{
			"block_number", "transaction_index", "log_index", "transaction_hash",
			"address", "topic0", "topic1", "topic2", "topic3", "data", "chain_id",
		},
		SortColumns:     []string{"block_number", "log_index"},
		RequiredDims:    []Dimension{DimBlockRange},
		OptionalDims:    []Dimension{DimAddress, DimTopic0, DimTopic1, DimTopic2, DimTopic3, DimTransactionHash},
		ByBlock:         true,
		ByTransaction:   true,
		UsesBlockRanges: true,
	})
}

func registerTraces() {
	cols := map[string]ColumnType{
		"block_number":      UInt32,
		"transaction_hash":  Binary,
		"transaction_position": UInt32,
		"action_type":       String,
		"from_address":      Binary,
		"to_address":        Binary,
		"value_binary":      Binary,
		"gas":               UInt64,
		"input":             Binary,
		"output":            Binary,
		"error":             String,
		"subtraces":         UInt32,
		"trace_address":     String,
		"chain_id":          UInt64,
	}
	register(Traces, &Descriptor{
		Name:            "traces",
		ColumnTypes:     cols,
		DefaultColumns:  keysOf(cols),
		SortColumns:     []string{"block_number", "transaction_position", "trace_address"},
		RequiredDims:    []Dimension{DimBlockNumber},
		OptionalDims:    []Dimension{DimTransactionHash},
		ByBlock:         true,
		ByTransaction:   true,
	})
}

// registerDerivedFromTraces covers Contracts (contract-creation traces) and
// NativeTransfers (call traces with non-zero value); both filter the same
// trace_block response rather than issuing their own RPC call.
func registerDerivedFromTraces() {
	contractCols := map[string]ColumnType{
		"block_number":     UInt32,
		"transaction_hash": Binary,
		"contract_address": Binary,
		"deployer":         Binary,
		"factory":          Binary,
		"init_code":        Binary,
		"code":             Binary,
		"chain_id":         UInt64,
	}
	register(Contracts, &Descriptor{
		Name:           "contracts",
		ColumnTypes:    contractCols,
		DefaultColumns: keysOf(contractCols),
		SortColumns:    []string{"block_number"},
		RequiredDims:   []Dimension{DimBlockNumber},
		ByBlock:        true,
	})

	nativeCols := map[string]ColumnType{
		"block_number":     UInt32,
		"transaction_hash": Binary,
		"from_address":     Binary,
		"to_address":       Binary,
		"value_binary":     Binary,
		"value_string":     String,
		"chain_id":         UInt64,
	}
	register(NativeTransfers, &Descriptor{
		Name:           "native_transfers",
		ColumnTypes:    nativeCols,
		DefaultColumns: keysOf(nativeCols),
		SortColumns:    []string{"block_number"},
		RequiredDims:   []Dimension{DimBlockNumber},
		ByBlock:        true,
	})
}

func registerTransfers() {
	cols := map[string]ColumnType{
		"block_number":     UInt32,
		"transaction_hash": Binary,
		"log_index":        UInt32,
		"erc20":            Binary,
		"from_address":     Binary,
		"to_address":       Binary,
		"value_binary":     Binary,
		"value_string":     String,
		"value_f64":        Float64,
		"chain_id":         UInt64,
	}
	register(Erc20Transfers, &Descriptor{
		Name:            "erc20_transfers",
		ColumnTypes:     cols,
		DefaultColumns:  keysOf(cols, "value_f64"),
		SortColumns:     []string{"block_number", "log_index"},
		RequiredDims:    []Dimension{DimBlockRange},
		OptionalDims:    []Dimension{DimAddress},
		ByBlock:         true,
		UsesBlockRanges: true,
	})

	nftCols := map[string]ColumnType{
		"block_number":     UInt32,
		"transaction_hash": Binary,
		"log_index":        UInt32,
		"erc721":           Binary,
		"from_address":     Binary,
		"to_address":       Binary,
		"token_id_binary":  Binary,
		"token_id_string":  String,
		"chain_id":         UInt64,
	}
	register(Erc721Transfers, &Descriptor{
		Name:            "erc721_transfers",
		ColumnTypes:     nftCols,
		DefaultColumns:  keysOf(nftCols),
		SortColumns:     []string{"block_number", "log_index"},
		RequiredDims:    []Dimension{DimBlockRange},
		OptionalDims:    []Dimension{DimAddress},
		ByBlock:         true,
		UsesBlockRanges: true,
	})
}

func registerErc20Metadata() {
	cols := map[string]ColumnType{
		"block_number": UInt32,
		"erc20":        Binary,
		"name":         String,
		"symbol":       String,
		"decimals":     UInt32,
		"chain_id":     UInt64,
	}
	register(Erc20Metadata, &Descriptor{
		Name:           "erc20_metadata",
		ColumnTypes:    cols,
		DefaultColumns: keysOf(cols),
		SortColumns:    []string{"block_number"},
		RequiredDims:   []Dimension{DimBlockNumber, DimContract},
		ByBlock:        true,
	})
}

func registerErc721Metadata() {
	cols := map[string]ColumnType{
		"block_number": UInt32,
		"erc721":       Binary,
		"name":         String,
		"symbol":       String,
		"chain_id":     UInt64,
	}
	register(Erc721Metadata, &Descriptor{
		Name:           "erc721_metadata",
		ColumnTypes:    cols,
		DefaultColumns: keysOf(cols),
		SortColumns:    []string{"block_number"},
		RequiredDims:   []Dimension{DimBlockNumber, DimContract},
		ByBlock:        true,
	})
}

func registerErc20Supplies() {
	cols := map[string]ColumnType{
		"block_number":  UInt32,
		"erc20":         Binary,
		"total_supply_binary": Binary,
		"total_supply_string": String,
		"total_supply_f64":    Float64,
		"chain_id":      UInt64,
	}
	register(Erc20Supplies, &Descriptor{
		Name:           "erc20_supplies",
		ColumnTypes:    cols,
		DefaultColumns: keysOf(cols, "total_supply_f64"),
		SortColumns:    []string{"block_number"},
		RequiredDims:   []Dimension{DimBlockNumber, DimContract},
		ByBlock:        true,
	})
}

func registerFourByteCounts() {
	cols := map[string]ColumnType{
		"block_number": UInt32,
		"signature":    String,
		"size":         UInt32,
		"count":        UInt64,
		"chain_id":     UInt64,
	}
	register(FourByteCounts, &Descriptor{
		Name:           "four_byte_counts",
		ColumnTypes:    cols,
		DefaultColumns: keysOf(cols),
		SortColumns:    []string{"block_number", "signature"},
		RequiredDims:   []Dimension{DimBlockNumber},
		ByBlock:        true,
	})
}

func registerEthCalls() {
	cols := map[string]ColumnType{
		"block_number":     UInt32,
		"contract_address": Binary,
		"call_data":        Binary,
		"call_data_hash":   Binary,
		"output_data":      Binary,
		"output_hash":      Binary,
		"chain_id":         UInt64,
	}
	register(EthCalls, &Descriptor{
		Name:           "eth_calls",
		ColumnTypes:    cols,
		DefaultColumns: keysOf(cols),
		SortColumns:    []string{"block_number", "contract_address"},
		RequiredDims:   []Dimension{DimBlockNumber, DimContract, DimCallData},
		ByBlock:        true,
	})
}

func registerAccountState() {
	balCols := map[string]ColumnType{
		"block_number": UInt32, "address": Binary,
		"balance_binary": Binary, "balance_string": String, "balance_f64": Float64,
		"chain_id": UInt64,
	}
	register(Balances, &Descriptor{
		Name: "balances", ColumnTypes: balCols, DefaultColumns: keysOf(balCols, "balance_f64"),
		SortColumns:  []string{"block_number", "address"},
		RequiredDims: []Dimension{DimBlockNumber, DimAddress},
		ByBlock:      true,
	})

	nonceCols := map[string]ColumnType{
		"block_number": UInt32, "address": Binary, "nonce": UInt64, "chain_id": UInt64,
	}
	register(Nonces, &Descriptor{
		Name: "nonces", ColumnTypes: nonceCols, DefaultColumns: keysOf(nonceCols),
		SortColumns:  []string{"block_number", "address"},
		RequiredDims: []Dimension{DimBlockNumber, DimAddress},
		ByBlock:      true,
	})

	codeCols := map[string]ColumnType{
		"block_number": UInt32, "address": Binary, "code": Binary, "chain_id": UInt64,
	}
	register(Codes, &Descriptor{
		Name: "codes", ColumnTypes: codeCols, DefaultColumns: keysOf(codeCols),
		SortColumns:  []string{"block_number", "address"},
		RequiredDims: []Dimension{DimBlockNumber, DimAddress},
		ByBlock:      true,
	})
}

func registerSlots() {
	cols := map[string]ColumnType{
		"block_number": UInt32, "address": Binary, "slot": Binary, "value": Binary, "chain_id": UInt64,
	}
	register(Slots, &Descriptor{
		Name: "slots", ColumnTypes: cols, DefaultColumns: keysOf(cols),
		SortColumns:  []string{"block_number", "address", "slot"},
		RequiredDims: []Dimension{DimBlockNumber, DimAddress, DimSlot},
		ByBlock:      true,
	})
}

// registerStateDiffs covers the four fused StateDiffs members: each has its
// own registered Datatype/Descriptor (so schema projection and file naming
// work per-member) even though one trace_replayBlockTransactions call feeds
// all four.
func registerStateDiffs() {
	binaryValueDiffCols := func() map[string]ColumnType {
		return map[string]ColumnType{
			"block_number":     UInt32,
			"transaction_hash": Binary,
			"address":          Binary,
			"from_value":       Binary,
			"to_value":         Binary,
			"change_type":      String,
			"chain_id":         UInt64,
		}
	}
	register(BalanceDiffs, &Descriptor{
		Name: "balance_diffs", ColumnTypes: binaryValueDiffCols(), DefaultColumns: keysOf(binaryValueDiffCols()),
		SortColumns: []string{"block_number", "address"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
	register(CodeDiffs, &Descriptor{
		Name: "code_diffs", ColumnTypes: binaryValueDiffCols(), DefaultColumns: keysOf(binaryValueDiffCols()),
		SortColumns: []string{"block_number", "address"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
	nonceDiffCols := map[string]ColumnType{
		"block_number": UInt32, "transaction_hash": Binary, "address": Binary,
		"from_value": UInt64, "to_value": UInt64, "change_type": String, "chain_id": UInt64,
	}
	register(NonceDiffs, &Descriptor{
		Name: "nonce_diffs", ColumnTypes: nonceDiffCols, DefaultColumns: keysOf(nonceDiffCols),
		SortColumns: []string{"block_number", "address"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
	storageDiffCols := map[string]ColumnType{
		"block_number": UInt32, "transaction_hash": Binary, "address": Binary, "slot": Binary,
		"from_value": Binary, "to_value": Binary, "change_type": String, "chain_id": UInt64,
	}
	register(StorageDiffs, &Descriptor{
		Name: "storage_diffs", ColumnTypes: storageDiffCols, DefaultColumns: keysOf(storageDiffCols),
		SortColumns: []string{"block_number", "address", "slot"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
}

// registerStateReads covers the four fused StateReads members, sourced from
// one debug_trace prestate call per block.
func registerStateReads() {
	balCols := map[string]ColumnType{
		"block_number": UInt32, "transaction_hash": Binary, "address": Binary,
		"balance_binary": Binary, "balance_string": String, "chain_id": UInt64,
	}
	register(BalanceReads, &Descriptor{
		Name: "balance_reads", ColumnTypes: balCols, DefaultColumns: keysOf(balCols),
		SortColumns: []string{"block_number", "address"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
	codeCols := map[string]ColumnType{
		"block_number": UInt32, "transaction_hash": Binary, "address": Binary, "code": Binary, "chain_id": UInt64,
	}
	register(CodeReads, &Descriptor{
		Name: "code_reads", ColumnTypes: codeCols, DefaultColumns: keysOf(codeCols),
		SortColumns: []string{"block_number", "address"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
	nonceCols := map[string]ColumnType{
		"block_number": UInt32, "transaction_hash": Binary, "address": Binary, "nonce": UInt64, "chain_id": UInt64,
	}
	register(NonceReads, &Descriptor{
		Name: "nonce_reads", ColumnTypes: nonceCols, DefaultColumns: keysOf(nonceCols),
		SortColumns: []string{"block_number", "address"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
	storageCols := map[string]ColumnType{
		"block_number": UInt32, "transaction_hash": Binary, "address": Binary, "slot": Binary,
		"value": Binary, "chain_id": UInt64,
	}
	register(StorageReads, &Descriptor{
		Name: "storage_reads", ColumnTypes: storageCols, DefaultColumns: keysOf(storageCols),
		SortColumns: []string{"block_number", "address", "slot"}, RequiredDims: []Dimension{DimBlockNumber},
		OptionalDims: []Dimension{DimTransactionHash}, ByBlock: true, ByTransaction: true,
	})
}

func registerJsTraces() {
	cols := map[string]ColumnType{
		"transaction_hash": Binary,
		"result_json":      String,
		"chain_id":         UInt64,
	}
	register(JsTraces, &Descriptor{
		Name: "js_traces", ColumnTypes: cols, DefaultColumns: keysOf(cols),
		SortColumns:   []string{"transaction_hash"},
		RequiredDims:  []Dimension{DimTransactionHash},
		ByTransaction: true,
	})
}

// keysOf returns every key of m except those named in exclude, sorted
// lexically so default column order is deterministic across runs — used
// where "all columns are default" is the simplest faithful reading of the
// source dataset.
func keysOf(m map[string]ColumnType, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	out := make([]string, 0, len(m))
	for k := range m {
		if !skip[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
