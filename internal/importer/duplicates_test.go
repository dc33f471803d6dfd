package importer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDuplicateResolver(t *testing.T) {
	d := NewDuplicateResolver([]string{"Rondo", " Passing Square ", ""})

	type claim struct {
		row  int
		name string
	}
	claims := []claim{
		{1, "Triangle"},
		{2, "RONDO"},
		{3, "triangle "},
		{4, "passing square"},
		{5, "Overlap"},
	}

	var got []RowError
	var accepted []int
	for _, c := range claims {
		if rerr, ok := d.Claim(c.row, c.name); !ok {
			got = append(got, rerr)
			continue
		}
		accepted = append(accepted, c.row)
	}

	want := []RowError{
		{Row: 2, Message: `Duplicate drill name "RONDO" (already in your drill library)`},
		{Row: 3, Message: `Duplicate drill name "triangle " (first seen at row 1)`},
		{Row: 4, Message: `Duplicate drill name "passing square" (already in your drill library)`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rejected claims mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 5}, accepted); diff != "" {
		t.Errorf("accepted rows mismatch (-want +got):\n%s", diff)
	}
}

func TestStage(t *testing.T) {
	raws := []RawRow{
		rawRow(1, map[string]Cell{FieldCategory: TextCell("Warm-up"), FieldName: TextCell("Rondo"), FieldMinutes: NumberCell(10)}),
		rawRow(2, map[string]Cell{FieldName: TextCell("No category")}),
		rawRow(3, map[string]Cell{FieldCategory: TextCell("Passing"), FieldName: TextCell("Triangle")}),
		rawRow(4, map[string]Cell{FieldCategory: TextCell("Passing"), FieldName: TextCell("rondo")}),
		rawRow(6, map[string]Cell{FieldCategory: TextCell("Finishing"), FieldName: TextCell("Existing drill")}),
	}

	got := stage(raws, []string{"existing DRILL"})

	want := StagedImport{
		Rows: []NormalizedRow{
			{Category: "Warm-up", Name: "Rondo", Minutes: intPtr(10)},
			{Category: "Passing", Name: "Triangle"},
		},
		Summary: ImportSummary{
			TotalRows:   5,
			ValidRows:   2,
			InvalidRows: 3,
			Errors: []RowError{
				{Row: 2, Message: msgCategoryRequired},
				{Row: 4, Message: `Duplicate drill name "rondo" (first seen at row 1)`},
				{Row: 6, Message: `Duplicate drill name "Existing drill" (already in your drill library)`},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stage() mismatch (-want +got):\n%s", diff)
	}
}
