package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/annel0/deadcity/internal/storage"
	"github.com/annel0/deadcity/internal/vec"
)

const timeFormat = "2006-01-02T15:04:05Z"

func main() {
	var (
		dbPath  = flag.String("path", "data/saves", "Badger directory with saves")
		command = flag.String("cmd", "list", "Command: list, show, export, delete")
		slot    = flag.String("slot", "default", "Save slot")
		out     = flag.String("out", "", "Output file for export (stdout by default)")
	)
	flag.Parse()

	repo, err := storage.NewBadgerSnapshotRepo(*dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to open saves: %v", err)
	}
	defer repo.Close()

	w := io.Writer(os.Stdout)
	if *out != "" && *command == "export" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("❌ Failed to create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := execute(ctx, repo, *command, *slot, w); err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// execute выполняет одну команду над хранилищем
func execute(ctx context.Context, repo storage.SnapshotRepo, command, slot string, w io.Writer) error {
	switch command {
	case "list":
		return listSlots(ctx, repo, w)
	case "show":
		rec, err := load(ctx, repo, slot)
		if err != nil {
			return err
		}
		printRecord(w, rec)
		return nil
	case "export":
		rec, err := load(ctx, repo, slot)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case "delete":
		if err := repo.Delete(ctx, slot); err != nil {
			return err
		}
		fmt.Fprintf(w, "🗑️  Slot %s deleted\n", slot)
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func load(ctx context.Context, repo storage.SnapshotRepo, slot string) (storage.Record, error) {
	rec, found, err := repo.Load(ctx, slot)
	if err != nil {
		return storage.Record{}, err
	}
	if !found {
		return storage.Record{}, fmt.Errorf("slot %s not found", slot)
	}
	return rec, nil
}

func listSlots(ctx context.Context, repo storage.SnapshotRepo, w io.Writer) error {
	slots, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(w, "📭 No saves")
		return nil
	}

	fmt.Fprintf(w, "%-16s %-20s %6s %8s\n", "SLOT", "SAVED AT", "LEVEL", "TICK")
	for _, slot := range slots {
		rec, found, err := repo.Load(ctx, slot)
		if err != nil || !found {
			fmt.Fprintf(w, "%-16s %-20s\n", slot, "<unreadable>")
			continue
		}
		fmt.Fprintf(w, "%-16s %-20s %6d %8d\n",
			slot, rec.SavedAt.UTC().Format(timeFormat), rec.Progression.Level, rec.Tick)
	}
	return nil
}

func printRecord(w io.Writer, rec storage.Record) {
	p := rec.Progression
	fmt.Fprintf(w, "💾 Slot:          %s\n", rec.Slot)
	fmt.Fprintf(w, "   Saved at:      %s\n", rec.SavedAt.UTC().Format(timeFormat))
	fmt.Fprintf(w, "   Tick:          %d\n", rec.Tick)
	fmt.Fprintf(w, "   Time survived: %s\n", vec.FormatTime(rec.TimeSurvived))
	fmt.Fprintf(w, "   Level:         %d (xp %d, skill points %d)\n", p.Level, p.Experience, p.SkillPoints)

	if len(p.Skills) > 0 {
		fmt.Fprintln(w, "   Skills:")
		for _, key := range sortedKeys(p.Skills) {
			s := p.Skills[key]
			fmt.Fprintf(w, "     %-14s lvl %d  value %.1f\n", key, s.Level, s.Value)
		}
	}

	done := 0
	for _, a := range p.Achievements {
		if a.Completed {
			done++
		}
	}
	fmt.Fprintf(w, "   Achievements:  %d/%d\n", done, len(p.Achievements))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
