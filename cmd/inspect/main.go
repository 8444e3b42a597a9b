// Command inspect dumps the records stored in a BadgerDB directory as a
// readable table. Handy when debugging what the server actually persisted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/badger", "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (user:, conv:, msg:), empty for everything")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Created", "Detail"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(describe(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(options)
}

func describe(key string, val []byte) []string {
	var record map[string]any
	if err := cbor.Unmarshal(val, &record); err != nil {
		// Reference keys store a plain ID instead of a record.
		return []string{key, "REF", "", string(val)}
	}

	recordType := "RAW"
	detail := ""
	switch {
	case strings.HasPrefix(key, "user:id:"):
		recordType = "USER"
		detail = fmt.Sprintf("%v <%v> online=%v", record["username"], record["email"], record["is_online"])
	case strings.HasPrefix(key, "conv:id:"):
		recordType = "CONV"
		detail = fmt.Sprintf("%v <-> %v", short(record["participant1"]), short(record["participant2"]))
		if deletedBy, ok := record["deleted_by"]; ok && deletedBy != nil {
			detail += fmt.Sprintf(" (hidden for %v)", short(deletedBy))
		}
	case strings.HasPrefix(key, "msg:"):
		recordType = "MSG"
		detail = fmt.Sprintf("%v: %v", short(record["sender_id"]), record["content"])
	}

	return []string{key, recordType, createdAt(record), detail}
}

func createdAt(record map[string]any) string {
	switch created := record["created_at"].(type) {
	case time.Time:
		return created.Format("2006-01-02 15:04:05")
	case string:
		return created
	case int64:
		return time.Unix(created, 0).UTC().Format("2006-01-02 15:04:05")
	case float64:
		return time.Unix(int64(created), 0).UTC().Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

func short(id any) string {
	s := fmt.Sprint(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
