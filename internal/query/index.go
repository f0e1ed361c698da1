package query

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/splunk-mcp/pkg/search"
)

// FieldIndex maps field=value pairs to the positions of the records that
// carry them. Values are compared in their fmt.Sprint form, so "200" and
// 200 match the same records.
type FieldIndex struct {
	postings map[string]map[string]*roaring.Bitmap
	size     int
}

// NewFieldIndex indexes every field of records by position.
func NewFieldIndex(records []search.Record) *FieldIndex {
	x := &FieldIndex{
		postings: make(map[string]map[string]*roaring.Bitmap),
		size:     len(records),
	}
	for i, rec := range records {
		for field, v := range rec {
			if v == nil {
				continue
			}
			byValue := x.postings[field]
			if byValue == nil {
				byValue = make(map[string]*roaring.Bitmap)
				x.postings[field] = byValue
			}
			key := fmt.Sprint(v)
			bm := byValue[key]
			if bm == nil {
				bm = roaring.New()
				byValue[key] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return x
}

// all returns a bitmap of every record position.
func (x *FieldIndex) all() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(0, uint64(x.size))
	return bm
}

// Match returns the positions of records that satisfy every filter.
func (x *FieldIndex) Match(filters map[string]string) *roaring.Bitmap {
	result := x.all()
	for field, value := range filters {
		bm := x.postings[field][value]
		if bm == nil {
			return roaring.New()
		}
		result = roaring.And(result, bm)
	}
	return result
}

// Filter returns the records that satisfy every filter, in order.
func (x *FieldIndex) Filter(records []search.Record, filters map[string]string) []search.Record {
	if len(filters) == 0 {
		return records
	}
	matched := x.Match(filters)
	kept := make([]search.Record, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i < len(records) {
			kept = append(kept, records[i])
		}
	}
	return kept
}

// ValueCount is a field value and the number of records carrying it.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Top returns the n most frequent values of field, ties broken by value.
// n <= 0 returns all values.
func (x *FieldIndex) Top(field string, n int) []ValueCount {
	byValue := x.postings[field]
	counts := make([]ValueCount, 0, len(byValue))
	for v, bm := range byValue {
		counts = append(counts, ValueCount{Value: v, Count: int(bm.GetCardinality())})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Distinct returns the number of distinct values of field.
func (x *FieldIndex) Distinct(field string) int {
	return len(x.postings[field])
}

// Fields returns the indexed field names, sorted.
func (x *FieldIndex) Fields() []string {
	fields := make([]string, 0, len(x.postings))
	for f := range x.postings {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
