// Package main provides a small tool to inspect the raw contents of the
// document store.
//
// Usage:
//
//	DATA_PATH=~/storefront go run ./cmd/dbinspect            # key summary
//	DATA_PATH=~/storefront go run ./cmd/dbinspect usr_abc123 # dump one document
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/storefront")
	}
	dbPath := filepath.Join(dataPath, "documents")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("open %s: %v", dbPath, err)
	}
	defer db.Close()

	if len(os.Args) > 1 {
		dumpDocument(db, os.Args[1])
		return
	}

	summarize(db)
}

// summarize counts keys per prefix (users, products, index entries, ...).
func summarize(db *badger.DB) {
	counts := map[string]int{}

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			prefix := key
			if i := strings.Index(key, ":"); i >= 0 {
				prefix = key[:i]
			}
			counts[prefix]++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	fmt.Println("Key counts by prefix:")
	for prefix, n := range counts {
		fmt.Printf("  %-20s %d\n", prefix, n)
	}
}

// dumpDocument prints every key containing the given ID, with values.
func dumpDocument(db *badger.DB, id string) {
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		found := 0
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if !strings.Contains(key, id) {
				continue
			}
			found++
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			fmt.Printf("== %s\n%s\n\n", key, val)
		}
		if found == 0 {
			fmt.Printf("No keys containing %q\n", id)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
}
