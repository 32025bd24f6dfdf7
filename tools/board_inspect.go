package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"message-board/attachments"
	"message-board/domain"
	"message-board/repositories"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type inspectConfig struct {
	StoreBackend   string        `envconfig:"STORE_BACKEND" default:"json"`
	DataPath       string        `envconfig:"DATA_PATH" default:"data/messages.json"`
	UploadRoot     string        `envconfig:"UPLOAD_ROOT" default:"uploads"`
	BadgerFilepath string        `envconfig:"BADGER_FILEPATH"`
	GCGrace        time.Duration `envconfig:"GC_GRACE" default:"10m"`
	// INSPECT_COLOURS toggles colorized kinds in the table
	Colours  bool   `envconfig:"INSPECT_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	collect := flag.Bool("gc", false, "Delete orphaned attachments after listing")
	width := flag.Int("width", 40, "Truncate messages longer than this many runes")
	flag.Parse()

	var config inspectConfig
	if err := envconfig.Process("", &config); err != nil {
		log.Fatal("Config error: ", err)
	}
	if config.BadgerFilepath == "" {
		config.BadgerFilepath = database.DefaultPath
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	resolver := attachments.NewResolver(config.UploadRoot)

	repository, closeStore, err := openStore(config, resolver, logger)
	if err != nil {
		log.Fatal("Error while opening the message store: ", err)
	}
	defer closeStore()

	records, err := repository.ListAll()
	if err != nil {
		log.Fatal(err)
	}
	render(records, config.Colours, *width)

	if *collect {
		result, err := attachments.NewCollector(resolver, config.GCGrace, logger).
			Collect(context.Background(), attachments.ReferencesOf(records))
		if err != nil {
			log.Fatal("Collection failed: ", err)
		}
		fmt.Printf("\nscanned=%d deleted=%d errors=%d in %v\n", result.Scanned, result.Deleted, result.Errors, result.Duration)
	}
}

func render(records []domain.MessageRecord, colours bool, width int) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Timestamp", "Name", "Message", "Image", "Video", "Audio"})
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

	missing := 0
	for _, record := range records {
		row := []string{record.ID, record.Timestamp, record.Name, shorten(record.Message, width)}
		for _, kind := range domain.Kinds {
			cell, ok := attachmentCell(record.Attachments.Get(kind), colours)
			if !ok {
				missing++
			}
			row = append(row, cell)
		}
		table.Append(row)
	}
	table.Render()

	summary := fmt.Sprintf("%d messages, %d missing attachment files", len(records), missing)
	if colours && missing > 0 {
		summary = color.New(color.FgRed).Render(summary)
	}
	fmt.Println(summary)
}

// attachmentCell shows the storage form of a load-form path and flags files missing from disk.
func attachmentCell(path *string, colours bool) (string, bool) {
	if path == nil || *path == "" {
		return "-", true
	}
	name := attachments.StoredName(*path)
	if _, err := os.Stat(*path); err != nil {
		if colours {
			return color.New(color.FgRed).Render(name + " (missing)"), false
		}
		return name + " (missing)", false
	}
	if colours {
		return color.New(color.FgGreen).Render(name), true
	}
	return name, true
}

func shorten(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	return string(runes[:width]) + "…"
}

func openStore(config inspectConfig, resolver attachments.Resolver, logger *slog.Logger) (repositories.IMessageRepository, func(), error) {
	if config.StoreBackend != repositories.BackendBadger {
		return repositories.NewJSONMessageRepository(config.DataPath, resolver, logger), func() {}, nil
	}
	// The server must be stopped: the sequence lease needs write access.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLogger(nil))
	if err != nil {
		return nil, nil, err
	}
	repository, err := repositories.NewBadgerMessageRepository(db, resolver, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository, func() {
		_ = repository.Close()
		_ = db.Close()
	}, nil
}
