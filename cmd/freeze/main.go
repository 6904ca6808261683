// Command freeze collects Ethereum-compatible JSON-RPC data into Parquet,
// CSV, or JSON files: one invocation names a set of datatypes plus a
// domain (a block range, transaction hashes, and optional address/topic/
// slot/call-data cross-products) and writes one file per datatype per
// partition.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crypto-data/freeze/internal/chainname"
	_ "github.com/crypto-data/freeze/internal/collect/datatypes"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/freeze"
	"github.com/crypto-data/freeze/internal/planner"
	"github.com/crypto-data/freeze/internal/remember"
	"github.com/crypto-data/freeze/internal/rpcfetch"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/sink"
	"github.com/crypto-data/freeze/internal/source"
	"github.com/crypto-data/freeze/pkg/config"
	"github.com/crypto-data/freeze/pkg/utils"
)

// engineVersion is stamped into every report and remembered command.
const engineVersion = "0.1.0"

type flags struct {
	rpcURL                         string
	blocks                         string
	txs                            string
	addresses                      string
	contracts                      string
	slots                          string
	callDatas                      string
	topic0, topic1, topic2, topic3 string
	chunkSize                      uint64
	align                          bool
	traceBackend                   string
	outputDir                      string
	format                         string
	overwrite                      bool
	hexEncoding                    bool
	includeColumns                 []string
	excludeColumns                 []string
	innerRequestSize               uint64
	maxConcurrentChunks            int64
	maxConcurrentReqs              int64
	requestsPerSecond              float64
	maxRetries                     uint64
	reportDir                      string
	rememberDir                    string
	noProgress                     bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configDefaults loads pkg/config's optional file+env layer and returns it
// as the flags' starting values; a missing or unreadable config file is
// not an error here; it just means every flag falls back to its
// hardcoded default instead.
func configDefaults() flags {
	fl := flags{
		chunkSize: 1000, outputDir: "./freeze_output", format: "parquet",
		hexEncoding: true, innerRequestSize: 1000, maxConcurrentChunks: 4,
		maxConcurrentReqs: 16, maxRetries: 5, reportDir: "./freeze_reports",
		rememberDir: "./.freeze", traceBackend: "parity",
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fl
	}
	fl.rpcURL = cfg.RPC.URL
	fl.maxRetries = cfg.RPC.MaxRetries
	fl.maxConcurrentReqs = cfg.RPC.MaxConcurrent
	fl.requestsPerSecond = cfg.RPC.PerSecond
	fl.outputDir = cfg.Output.Dir
	fl.format = cfg.Output.Format
	fl.overwrite = cfg.Output.Overwrite
	fl.hexEncoding = cfg.Output.HexEncoding
	fl.chunkSize = cfg.Collection.ChunkSize
	fl.align = cfg.Collection.Align
	fl.maxConcurrentChunks = cfg.Collection.MaxConcurrentChunks
	fl.innerRequestSize = cfg.Collection.InnerRequestSize
	fl.traceBackend = cfg.Collection.TraceBackend
	fl.reportDir = cfg.Report.Dir
	return fl
}

func run(argv []string) error {
	fl := configDefaults()
	root := &cobra.Command{
		Use:   "freeze <datatype> [<datatype>...]",
		Short: "collect Ethereum JSON-RPC data into columnar files",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), args, fl)
		},
	}
	root.SetArgs(argv)

	root.Flags().StringVar(&fl.rpcURL, "rpc", fl.rpcURL, "JSON-RPC endpoint (falls back to ETH_RPC_URL)")
	root.Flags().StringVarP(&fl.blocks, "blocks", "b", "", "block spec: N, N:M, or N,M,K (endpoints accept latest/latest-N)")
	root.Flags().StringVar(&fl.txs, "txs", "", "transaction hashes: comma-separated, or a path to a newline-delimited file")
	root.Flags().StringVar(&fl.addresses, "address", "", "address dimension: comma-separated, or a file path")
	root.Flags().StringVar(&fl.contracts, "contract", "", "contract dimension: comma-separated, or a file path")
	root.Flags().StringVar(&fl.slots, "slot", "", "storage slot dimension: comma-separated, or a file path")
	root.Flags().StringVar(&fl.callDatas, "call-data", "", "eth_call calldata dimension: comma-separated hex")
	root.Flags().StringVar(&fl.topic0, "topic0", "", "log topic0 filter")
	root.Flags().StringVar(&fl.topic1, "topic1", "", "log topic1 filter")
	root.Flags().StringVar(&fl.topic2, "topic2", "", "log topic2 filter")
	root.Flags().StringVar(&fl.topic3, "topic3", "", "log topic3 filter")
	root.Flags().Uint64Var(&fl.chunkSize, "chunk-size", fl.chunkSize, "blocks per output file")
	root.Flags().BoolVar(&fl.align, "align", fl.align, "align chunk boundaries to multiples of chunk-size")
	root.Flags().StringVar(&fl.traceBackend, "trace-backend", fl.traceBackend, "geth or parity: which RPC namespace backs the state-diff datatypes")
	root.Flags().StringVarP(&fl.outputDir, "output-dir", "o", fl.outputDir, "output directory")
	root.Flags().StringVar(&fl.format, "output-format", fl.format, "parquet, csv, or json")
	root.Flags().BoolVar(&fl.overwrite, "overwrite", fl.overwrite, "re-collect partitions whose output file already exists")
	root.Flags().BoolVar(&fl.hexEncoding, "hex", fl.hexEncoding, "encode binary columns as 0x-prefixed hex rather than raw bytes")
	root.Flags().StringSliceVar(&fl.includeColumns, "include-columns", nil, "column projection: exact set, or \"all\"")
	root.Flags().StringSliceVar(&fl.excludeColumns, "exclude-columns", nil, "column projection: defaults minus these")
	root.Flags().Uint64Var(&fl.innerRequestSize, "inner-request-size", fl.innerRequestSize, "max blocks per eth_getLogs call")
	root.Flags().Int64Var(&fl.maxConcurrentChunks, "max-concurrent-chunks", fl.maxConcurrentChunks, "partitions collected in parallel")
	root.Flags().Int64Var(&fl.maxConcurrentReqs, "max-concurrent-requests", fl.maxConcurrentReqs, "in-flight RPC calls across the whole run")
	root.Flags().Float64Var(&fl.requestsPerSecond, "requests-per-second", fl.requestsPerSecond, "0 disables rate limiting")
	root.Flags().Uint64Var(&fl.maxRetries, "max-retries", fl.maxRetries, "retries for a transient RPC failure before giving up")
	root.Flags().StringVar(&fl.reportDir, "report-dir", fl.reportDir, "where run reports are written")
	root.Flags().StringVar(&fl.rememberDir, "remember-dir", fl.rememberDir, "where the last invocation is remembered")
	root.Flags().BoolVar(&fl.noProgress, "no-progress", false, "disable the progress bar")

	return root.Execute()
}

func execute(ctx context.Context, names []string, fl flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logrus.NewEntry(logrus.StandardLogger())

	rpcURL := fl.rpcURL
	if rpcURL == "" {
		rpcURL = utils.EnvOrDefault("ETH_RPC_URL", "")
	}
	if rpcURL == "" {
		return errs.Parse("no RPC endpoint: pass --rpc or set ETH_RPC_URL", nil)
	}

	if len(names) == 0 {
		remembered, err := remember.Load(fl.rememberDir)
		if err != nil {
			return err
		}
		if remembered == nil {
			return fmt.Errorf("no datatypes given and nothing remembered in %s", fl.rememberDir)
		}
		names = stringsFromAny(remembered.Args["datatypes"])
		overrides := map[string]any{}
		if fl.blocks != "" {
			overrides["blocks"] = fl.blocks
		}
		if b, ok := remember.Merge(remembered.Args, overrides)["blocks"].(string); ok {
			fl.blocks = b
		}
	}

	datatypes := make([]schema.Datatype, 0, len(names))
	for _, n := range names {
		dt, err := schema.ByName(n)
		if err != nil {
			return err
		}
		datatypes = append(datatypes, dt)
	}

	client, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("could not dial rpc endpoint: %w", err)
	}
	fetcher := rpcfetch.New(client, rpcfetch.Options{
		MaxConcurrentRequests: fl.maxConcurrentReqs,
		RequestsPerSecond:     fl.requestsPerSecond,
		MaxRetries:            fl.maxRetries,
		Logger:                log,
	})

	chainID, err := fetcher.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("could not resolve chain id: %w", err)
	}
	src := source.New(fetcher, chainID, fl.innerRequestSize, fl.maxConcurrentChunks)

	req, err := buildRequest(ctx, fetcher, datatypes, fl)
	if err != nil {
		return err
	}

	encoding := schema.EncodingBinary
	if fl.hexEncoding {
		encoding = schema.EncodingHex
	}
	tables := make(map[schema.Datatype]*schema.Table, len(datatypes))
	for _, dt := range datatypes {
		t, err := schema.Resolve(dt, fl.includeColumns, fl.excludeColumns, encoding)
		if err != nil {
			return err
		}
		tables[dt] = t
	}

	format, err := sink.ParseFormat(fl.format)
	if err != nil {
		return err
	}
	fileSink, err := sink.New(fl.outputDir, chainname.Lookup(chainID), format, fl.overwrite, sink.ParquetOptions{})
	if err != nil {
		return err
	}

	argv := append([]string{"freeze"}, names...)
	summary, err := freeze.Run(ctx, req, freeze.Options{
		Source:        src,
		Tables:        tables,
		Sink:          fileSink,
		ReportDir:     fl.reportDir,
		Timestamp:     reportTimestamp(),
		EngineVersion: engineVersion,
		CLIArgv:       argv,
		ParsedArgs:    map[string]any{"blocks": fl.blocks, "output_format": fl.format},
		Progress:      !fl.noProgress,
	})
	if err != nil {
		return err
	}

	if err := remember.Save(fl.rememberDir, remember.Command{
		EngineVersion: engineVersion,
		Argv:          argv,
		Args:          map[string]any{"datatypes": names, "blocks": fl.blocks},
	}); err != nil {
		log.WithError(err).Warn("could not persist remembered command")
	}

	fmt.Printf("completed %d file(s), skipped %d, errored %d\n", len(summary.Completed), summary.NSkipped, len(summary.Errored))
	if len(summary.Errored) > 0 {
		os.Exit(1)
	}
	return nil
}

// reportTimestamp formats the current time the way run reports are named,
// isolated here so it's the only place in the command that calls time.Now.
func reportTimestamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}

func buildRequest(ctx context.Context, fetcher *rpcfetch.Fetcher, datatypes []schema.Datatype, fl flags) (planner.Request, error) {
	req := planner.Request{Datatypes: datatypes, ChunkSize: fl.chunkSize, Align: fl.align, TraceBackend: fl.traceBackend}

	if fl.blocks != "" {
		blocks, err := parseBlockSpec(ctx, fetcher, fl.blocks)
		if err != nil {
			return req, err
		}
		req.Blocks = &blocks
	}

	if fl.txs != "" {
		c, err := parseBinarySpec(fl.txs)
		if err != nil {
			return req, err
		}
		req.Transactions = &c
	}
	if fl.addresses != "" {
		c, err := parseBinarySpec(fl.addresses)
		if err != nil {
			return req, err
		}
		req.Addresses = &c
	}
	if fl.contracts != "" {
		c, err := parseBinarySpec(fl.contracts)
		if err != nil {
			return req, err
		}
		req.Contracts = &c
	}
	if fl.slots != "" {
		c, err := parseBinarySpec(fl.slots)
		if err != nil {
			return req, err
		}
		req.Slots = &c
	}
	if fl.callDatas != "" {
		c, err := parseBinarySpec(fl.callDatas)
		if err != nil {
			return req, err
		}
		req.CallDatas = &c
	}
	if fl.topic0 != "" {
		c, err := parseBinarySpec(fl.topic0)
		if err != nil {
			return req, err
		}
		req.Topic0 = &c
	}
	if fl.topic1 != "" {
		c, err := parseBinarySpec(fl.topic1)
		if err != nil {
			return req, err
		}
		req.Topic1 = &c
	}
	if fl.topic2 != "" {
		c, err := parseBinarySpec(fl.topic2)
		if err != nil {
			return req, err
		}
		req.Topic2 = &c
	}
	if fl.topic3 != "" {
		c, err := parseBinarySpec(fl.topic3)
		if err != nil {
			return req, err
		}
		req.Topic3 = &c
	}
	return req, nil
}

func stringsFromAny(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(t, ",")
	default:
		return nil
	}
}
