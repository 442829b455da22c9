package internal

import (
	"context"
	"dm-lab/domain"
	"dm-lab/repositories"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// StartDebugServer exposes a plain text dump of the store on endpoint.
// The ?prefix= query parameter narrows the scan, e.g. ?prefix=unread:
// The server stops when ctx is done.
func StartDebugServer(ctx context.Context, log *slog.Logger, db *badger.DB, port int, endpoint string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		var entries []repositories.Entry
		err := repositories.ScanEntries(r.Context(), db, r.URL.Query().Get("prefix"), func(entry repositories.Entry) error {
			entries = append(entries, entry)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		RenderEntries(w, entries)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	return server
}

// RenderEntries prints entries as a borderless table.
func RenderEntries(w io.Writer, entries []repositories.Entry) {
	table := newTable(w, []string{"Key", "Kind", "Timestamp", "Entity ID", "Detail"})
	for _, entry := range entries {
		table.Append([]string{entry.Key, entry.Kind, entry.Timestamp, entry.EntityID, entry.Detail})
	}
	table.Render()
	fmt.Fprintf(w, "\nTotal: %d keys\n", len(entries))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// RenderConversations prints the conversation list of one user.
func RenderConversations(w io.Writer, conversations []domain.Conversation) {
	table := newTable(w, []string{"Peer", "Last Message", "At", "Mine", "Unread"})
	for _, conversation := range conversations {
		table.Append([]string{
			conversation.PeerID,
			conversation.LastMessage.Content,
			conversation.LastMessageTime.Format(time.DateTime),
			strconv.FormatBool(conversation.IsLastMessageMine),
			strconv.Itoa(conversation.UnreadCount),
		})
	}
	table.Render()
}
