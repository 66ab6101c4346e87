// Command coreinspect opens an index file and prints buffer pool
// statistics plus a level-order dump of one named tree, replacing the
// teacher's SQL-executing main.go with a debugging entry point scoped to
// this system's storage engine (disk, buffer, hash, bptree) rather than a
// query layer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"coredb/bptree"
	"coredb/buffer"
	"coredb/config"
	"coredb/dbkey"
	"coredb/disk"
)

func main() {
	dbPath := flag.String("db", "", "path to the index file")
	treeName := flag.String("tree", "default", "name of the tree to inspect")
	verbose := flag.Bool("verbose", false, "include parent/next page ids in the dump")
	poolSize := flag.Int("pool-size", 128, "buffer pool frame count")
	flag.Parse()

	log := logrus.StandardLogger()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "coreinspect: -db is required")
		os.Exit(2)
	}

	if err := run(*dbPath, *treeName, *poolSize, *verbose, log); err != nil {
		log.WithError(err).Fatal("coreinspect: failed")
	}
}

func run(dbPath, treeName string, poolSize int, verbose bool, log *logrus.Logger) error {
	fresh := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fresh = true
	}

	dm, err := disk.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open disk manager: %w", err)
	}
	defer dm.Close()

	opts := config.New(config.WithPoolSize(poolSize), config.WithLogger(log))
	pool := buffer.New(opts, dm)

	if fresh {
		if err := bptree.Bootstrap(pool); err != nil {
			return fmt.Errorf("bootstrap header page: %w", err)
		}
	}

	tree, err := bptree.Open(treeName, pool, dbkey.CompareInt64Keys, dbkey.Int64KeySize, dbkey.RecordIDSize, log)
	if err != nil {
		return fmt.Errorf("open tree %q: %w", treeName, err)
	}

	stats := pool.Stats()
	fmt.Printf("buffer pool: %s\n", stats.String())

	dump, err := tree.ToString(verbose)
	if err != nil {
		return fmt.Errorf("dump tree %q: %w", treeName, err)
	}
	fmt.Printf("tree %q:\n%s", treeName, dump)

	pool.FlushAllPages()
	return dm.Sync()
}
