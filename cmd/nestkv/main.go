// Command nestkv is a development utility for inspecting and mutating
// the configured stores. It is an example consumer of the facade, not
// part of the library's API surface.
//
// Usage:
//
//	nestkv [-config path] [-store local|session|memory] <op> [args]
//
//	get <key> [fallback-json]
//	set <key> <value-json>
//	remove <key>
//	has <key>
//	keys
//	all
//	clear
//	clear-prefix <prefix>
//	sync <target-json-file>      (local and session stores only)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nestkv/nestkv"
)

func main() {
	configPath := flag.String("config", os.Getenv("NESTKV_CONFIG_PATH"), "config file path")
	storeName := flag.String("store", "local", "store to operate on: local, session, or memory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := nestkv.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	stores, err := nestkv.Open(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}
	defer stores.Close()

	if err := run(ctx, stores, *storeName, args); err != nil {
		log.Fatalf("%v", err)
	}
}

type adapter interface {
	Get(ctx context.Context, key string, fallback any) any
	Set(ctx context.Context, key string, value any)
	Remove(ctx context.Context, key string)
	Has(ctx context.Context, key string) bool
	ClearByPrefix(ctx context.Context, prefix string)
	Keys(ctx context.Context) []string
	All(ctx context.Context) map[string]any
	Clear(ctx context.Context)
}

func run(ctx context.Context, stores *nestkv.Stores, storeName string, args []string) error {
	var a adapter
	switch storeName {
	case "local":
		a = stores.Local
	case "session":
		a = stores.Session
	case "memory":
		a = stores.Memory
	default:
		return fmt.Errorf("unknown store %q", storeName)
	}

	op, rest := args[0], args[1:]
	switch op {
	case "get":
		if len(rest) < 1 {
			return fmt.Errorf("get requires a key")
		}
		var fallback any
		if len(rest) > 1 {
			if err := json.Unmarshal([]byte(rest[1]), &fallback); err != nil {
				return fmt.Errorf("fallback is not valid JSON: %w", err)
			}
		}
		return printJSON(a.Get(ctx, rest[0], fallback))

	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("set requires a key and a JSON value")
		}
		var value any
		if err := json.Unmarshal([]byte(rest[1]), &value); err != nil {
			return fmt.Errorf("value is not valid JSON: %w", err)
		}
		a.Set(ctx, rest[0], value)
		return nil

	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("remove requires a key")
		}
		a.Remove(ctx, rest[0])
		return nil

	case "has":
		if len(rest) != 1 {
			return fmt.Errorf("has requires a key")
		}
		fmt.Println(a.Has(ctx, rest[0]))
		return nil

	case "keys":
		return printJSON(a.Keys(ctx))

	case "all":
		return printJSON(a.All(ctx))

	case "clear":
		a.Clear(ctx)
		return nil

	case "clear-prefix":
		if len(rest) != 1 {
			return fmt.Errorf("clear-prefix requires a prefix")
		}
		a.ClearByPrefix(ctx, rest[0])
		return nil

	case "sync":
		if len(rest) != 1 {
			return fmt.Errorf("sync requires a target JSON file")
		}
		var sa interface {
			Sync(ctx context.Context, target map[string]any)
		}
		switch storeName {
		case "local":
			sa = stores.Local
		case "session":
			sa = stores.Session
		default:
			return fmt.Errorf("sync is only available on byte-string stores")
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return fmt.Errorf("read target file: %w", err)
		}
		var target map[string]any
		if err := json.Unmarshal(data, &target); err != nil {
			return fmt.Errorf("target file is not a JSON mapping: %w", err)
		}
		sa.Sync(ctx, target)
		return nil

	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
