package userstore

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchFilter_Empty(t *testing.T) {
	filter := SearchFilter(SearchParams{})
	if len(filter) != 0 {
		t.Errorf("empty params should build an empty filter, got %v", filter)
	}
}

func TestSearchFilter_TermCoversFieldSet(t *testing.T) {
	filter := SearchFilter(SearchParams{Term: "silva"})

	or, ok := filter["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or clause, got %v", filter)
	}
	if len(or) != len(searchFields) {
		t.Fatalf("expected %d OR branches, got %d", len(searchFields), len(or))
	}

	seen := map[string]bool{}
	for _, clause := range or {
		for field, v := range clause {
			re, ok := v.(primitive.Regex)
			if !ok {
				t.Fatalf("field %s: expected regex match, got %T", field, v)
			}
			if re.Options != "i" {
				t.Errorf("field %s: expected case-insensitive regex, got options %q", field, re.Options)
			}
			if re.Pattern != "silva" {
				t.Errorf("field %s: pattern = %q, want %q", field, re.Pattern, "silva")
			}
			seen[field] = true
		}
	}
	for _, f := range searchFields {
		if !seen[f] {
			t.Errorf("field %s missing from OR branches", f)
		}
	}
}

func TestSearchFilter_TermEscapesRegexMeta(t *testing.T) {
	filter := SearchFilter(SearchParams{Term: "a.b*"})
	or := filter["$or"].([]bson.M)
	re := or[0]["first_name"].(primitive.Regex)
	if re.Pattern == "a.b*" {
		t.Error("regex metacharacters in the term should be quoted")
	}
}

func TestSearchFilter_TermParsingAsDate(t *testing.T) {
	filter := SearchFilter(SearchParams{Term: "2023-04-01"})

	or, ok := filter["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or clause, got %v", filter)
	}
	if len(or) != len(searchFields)+1 {
		t.Fatalf("expected %d OR branches (fields + created_at), got %d", len(searchFields)+1, len(or))
	}

	last := or[len(or)-1]
	d, ok := last["created_at"].(time.Time)
	if !ok {
		t.Fatalf("expected created_at time branch, got %v", last)
	}
	want := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("created_at = %v, want %v", d, want)
	}
}

func TestSearchFilter_DateRange(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	filter := SearchFilter(SearchParams{StartDate: start, EndDate: end})
	rng, ok := filter["created_at"].(bson.M)
	if !ok {
		t.Fatalf("expected created_at range, got %v", filter)
	}
	if !rng["$gte"].(time.Time).Equal(start) || !rng["$lte"].(time.Time).Equal(end) {
		t.Errorf("range bounds wrong: %v", rng)
	}
}

func TestSearchFilter_DateRangeIgnoredWhenInverted(t *testing.T) {
	start := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	filter := SearchFilter(SearchParams{StartDate: start, EndDate: end})
	if _, ok := filter["created_at"]; ok {
		t.Error("inverted range should not constrain created_at")
	}
}

func TestSearchFilter_DateRangeRequiresBothBounds(t *testing.T) {
	filter := SearchFilter(SearchParams{StartDate: time.Now()})
	if _, ok := filter["created_at"]; ok {
		t.Error("range with only a start bound should not constrain created_at")
	}
}
