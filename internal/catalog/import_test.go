// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package catalog

import (
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `Handle,Title,Vendor,Tags
kind-of-blue,Kind of Blue,Blue Note,"Genre Parent: Jazz, Subgenre: Modal, 50C"
blue-train,Blue Train,Blue Note,"Genre Parent: Jazz"
whats-going-on,What's Going On,Motown,
kind-of-blue,Duplicate Row,Blue Note,
`

func TestImportCSV(t *testing.T) {
	records, err := ImportCSV(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3 (duplicate dropped)", len(records))
	}

	p := records[0].Product
	if p.Handle != "kind-of-blue" || p.Title != "Kind of Blue" || p.Vendor != "Blue Note" {
		t.Errorf("first product = %+v", p)
	}
	if p.ExistingGenre != "Jazz" || p.ExistingSubgenre != "Modal" || p.ExistingDecade != "50C" {
		t.Errorf("tags not parsed: %+v", p)
	}
	if records[0].RawTags != "Genre Parent: Jazz, Subgenre: Modal, 50C" {
		t.Errorf("raw tags = %q", records[0].RawTags)
	}

	if records[2].Product.ExistingGenre != "" {
		t.Errorf("untagged product got genre %q", records[2].Product.ExistingGenre)
	}
}

func TestImportCSVCaseInsensitiveHeaders(t *testing.T) {
	csv := "HANDLE,title,VENDOR,tags\nh1,T,V,Genre Parent: Soul\n"
	records, err := ImportCSV(strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(records) != 1 || records[0].Product.ExistingGenre != "Soul" {
		t.Errorf("records = %+v", records)
	}
}

func TestImportCSVMissingHandleColumn(t *testing.T) {
	csv := "Title,Vendor\nT,V\n"
	if _, err := ImportCSV(strings.NewReader(csv), nil); !errors.Is(err, ErrMissingHandleColumn) {
		t.Errorf("err = %v, want ErrMissingHandleColumn", err)
	}
}

func TestImportCSVSkipsEmptyHandles(t *testing.T) {
	csv := "Handle,Title,Vendor,Tags\n,No Handle,V,\nh1,Has Handle,V,\n"
	records, err := ImportCSV(strings.NewReader(csv), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Product.Handle != "h1" {
		t.Errorf("records = %+v", records)
	}
}

func TestImportCSVSharedSeenAcrossFiles(t *testing.T) {
	seen := make(map[string]bool)
	first, err := ImportCSV(strings.NewReader("Handle,Title,Vendor,Tags\nh1,A,V,\n"), seen)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ImportCSV(strings.NewReader("Handle,Title,Vendor,Tags\nh1,A Again,V,\nh2,B,V,\n"), seen)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Product.Handle != "h2" {
		t.Errorf("first=%d second=%+v", len(first), second)
	}
}

func TestImportCSVUnevenRows(t *testing.T) {
	// Shopify exports truncate trailing columns on some rows.
	csv := "Handle,Title,Vendor,Tags\nh1,Short Row\n"
	records, err := ImportCSV(strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(records) != 1 || records[0].Product.Vendor != "" {
		t.Errorf("records = %+v", records)
	}
}

func TestProducts(t *testing.T) {
	records, err := ImportCSV(strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	products := Products(records)
	if len(products) != 3 || products[0].Handle != "kind-of-blue" {
		t.Errorf("products = %+v", products)
	}
}
