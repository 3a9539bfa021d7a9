// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mracine/tagquest/internal/models"
)

func testAuditor() *Auditor {
	return NewAuditor(
		[]string{"Jazz", "Classic Rock", "R&B / Soul / Funk"},
		[]string{"50C", "60C", "2010c"},
	)
}

func rec(handle, vendor, tags string) Record {
	records, _ := ImportCSV(strings.NewReader(
		"Handle,Title,Vendor,Tags\n"+handle+",Title,"+vendor+",\""+tags+"\"\n"), nil)
	return records[0]
}

func TestAuditCompleteProduct(t *testing.T) {
	a := testAuditor()
	products, stats := a.Audit([]Record{
		rec("p1", "V", "Genre Parent: Jazz, Subgenre: Bebop, 50C"),
	})

	p := products[0]
	if !p.HasGenre || !p.HasSubgenre || !p.HasDecade {
		t.Errorf("flags = %+v", p)
	}
	if len(p.ParsingNotes) != 0 {
		t.Errorf("unexpected notes: %v", p.ParsingNotes)
	}
	if stats.Complete != 1 || stats.Total != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAuditCanonicalizesGenreCase(t *testing.T) {
	a := testAuditor()
	products, _ := a.Audit([]Record{rec("p1", "V", "Genre Parent: jazz")})
	if products[0].Parsed.Genre != "Jazz" {
		t.Errorf("genre = %q, want canonical Jazz", products[0].Parsed.Genre)
	}
	if len(products[0].ParsingNotes) != 0 {
		t.Errorf("case variant flagged: %v", products[0].ParsingNotes)
	}
}

func TestAuditFlagsNonStandardValues(t *testing.T) {
	a := testAuditor()
	products, _ := a.Audit([]Record{
		rec("p1", "V", "Genre Parent: Polka, 40C"),
	})

	notes := products[0].ParsingNotes
	if len(notes) != 2 {
		t.Fatalf("notes = %v, want genre and decade flags", notes)
	}
	if !strings.Contains(notes[0], "Non-standard genre") || !strings.Contains(notes[0], "Polka") {
		t.Errorf("genre note = %q", notes[0])
	}
	if !strings.Contains(notes[1], "Non-standard decade format") || !strings.Contains(notes[1], "40C") {
		t.Errorf("decade note = %q", notes[1])
	}

	// Non-standard values still count as present.
	if !products[0].HasGenre || !products[0].HasDecade {
		t.Errorf("flags = %+v", products[0])
	}
}

func TestAuditDecadeCaseVariants(t *testing.T) {
	a := testAuditor()
	products, _ := a.Audit([]Record{rec("p1", "V", "2010C")})
	// 2010c is configured lowercase; the upper-cased parse still matches.
	if len(products[0].ParsingNotes) != 0 {
		t.Errorf("2010C flagged: %v", products[0].ParsingNotes)
	}
}

func TestAuditStatsBuckets(t *testing.T) {
	a := testAuditor()
	_, stats := a.Audit([]Record{
		rec("p1", "V", "Genre Parent: Jazz, Subgenre: Bebop, 50C"), // complete
		rec("p2", "V", "Subgenre: Bebop, 50C"),                     // missing genre only
		rec("p3", "V", "Genre Parent: Jazz, 50C"),                  // missing subgenre only
		rec("p4", "V", "Genre Parent: Jazz, Subgenre: Bebop"),      // missing decade only
		rec("p5", "V", ""),                                         // missing all
		rec("p6", "V", "Genre Parent: Jazz"),                       // partial, no bucket
	})

	if stats.Total != 6 || stats.Complete != 1 || stats.MissingAll != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.MissingGenreOnly != 1 || stats.MissingSubgenreOnly != 1 || stats.MissingDecadeOnly != 1 {
		t.Errorf("only-buckets = %+v", stats)
	}
	if stats.WithGenre != 4 || stats.WithSubgenre != 3 || stats.WithDecade != 3 {
		t.Errorf("with-counts = %+v", stats)
	}
}

func TestExportMissing(t *testing.T) {
	a := testAuditor()
	products, _ := a.Audit([]Record{
		rec("p1", "Blue Note", "Genre Parent: Jazz"),
		rec("p2", "Motown", "Subgenre: Funk"),
	})

	var buf bytes.Buffer
	if err := ExportMissing(&buf, products, models.TagGenre); err != nil {
		t.Fatalf("ExportMissing: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want header + 1 row", lines)
	}
	if lines[0] != "Handle,Title,Vendor,Current Tags" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "p2,") {
		t.Errorf("row = %q, want the genre-less product", lines[1])
	}
}
