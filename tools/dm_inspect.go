package main

import (
	"context"
	"dm-lab/domain"
	"dm-lab/internal"
	"dm-lab/projection"
	"dm-lab/repositories"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (dm:, unread:, peer:, profile:)")
	user := flag.String("user", "", "Show the conversation list of this user instead of raw keys")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	ctx := context.Background()
	if *user != "" {
		repository := repositories.NewMessageRepository(db, logs.GetLoggerFromLevel(slog.LevelWarn), nil)
		fold := projection.NewConversationFold(*user)
		if err := repository.ScanParticipant(ctx, *user, func(message domain.Message) error {
			fold.Add(message)
			return nil
		}); err != nil {
			log.Fatal("Error while scanning: ", err)
		}
		internal.RenderConversations(os.Stdout, fold.Conversations())
		return
	}

	var entries []repositories.Entry
	if err := repositories.ScanEntries(ctx, db, *prefix, func(entry repositories.Entry) error {
		entries = append(entries, entry)
		return nil
	}); err != nil {
		log.Fatal("Error while scanning: ", err)
	}
	internal.RenderEntries(os.Stdout, entries)
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}
