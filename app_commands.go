package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/thirukguru/aws-auditor/service/storage"
)

func runStorageCommand(cmd string, args []string) error {
	switch cmd {
	case "db":
		return runDBCommand(args)
	case "history":
		return runHistoryCommand(args)
	default:
		return fmt.Errorf("unsupported command: %s", cmd)
	}
}

func runDBCommand(args []string) error {
	fs := pflag.NewFlagSet("db", pflag.ContinueOnError)
	dbPath := fs.String("db-path", "", "SQLite database path")
	olderThan := fs.Int("older-than", 30, "Purge scans older than N days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: aws-auditor db <vacuum|purge> [--db-path ...]")
	}

	store, err := storage.NewService(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch rest[0] {
	case "vacuum":
		return store.Vacuum(context.Background())
	case "purge":
		count, err := store.PurgeOlderThan(context.Background(), *olderThan)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d scans\n", count)
		return nil
	default:
		return fmt.Errorf("unsupported db command: %s", rest[0])
	}
}

func runHistoryCommand(args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	dbPath := fs.String("db-path", "", "SQLite database path")
	accountID := fs.String("account-id", "", "AWS account ID filter")
	limit := fs.Int("limit", 20, "Number of rows to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: aws-auditor history <list|show>")
	}

	store, err := storage.NewService(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch rest[0] {
	case "list":
		scans, err := store.GetRecentScans(*accountID, *limit)
		if err != nil {
			return err
		}
		for _, s := range scans {
			fmt.Printf("%d\t%s\t%s\t%s\t%d\n", s.ScanID, s.ScanTimestamp.Format("2006-01-02 15:04:05"), s.AccountID, s.Region, s.TotalFindings)
		}
		return nil
	case "show":
		if len(rest) < 2 {
			return fmt.Errorf("usage: aws-auditor history show <scan-id>")
		}
		scanID, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return err
		}
		findings, err := store.ListFindings(scanID)
		if err != nil {
			return err
		}
		for _, f := range findings {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", f.Severity, f.Service, f.Check, f.Region, f.ResourceID)
		}
		return nil
	default:
		return fmt.Errorf("unsupported history command: %s", rest[0])
	}
}
