package invoice

import (
	"reflect"
	"testing"
)

func TestAllSentinel(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "all sentinel",
			record: Record{InvoiceNumber: "-", CustomerName: "-", GrossPrice: "-", Tax: "-", TotalPrice: "-"},
			want:   true,
		},
		{
			name:   "sentinel with whitespace",
			record: Record{InvoiceNumber: " - ", CustomerName: "-", GrossPrice: "-\t", Tax: "-", TotalPrice: " -"},
			want:   true,
		},
		{
			name:   "one real field",
			record: Record{InvoiceNumber: "-", CustomerName: "Acme", GrossPrice: "-", Tax: "-", TotalPrice: "-"},
			want:   false,
		},
		{
			name:   "zero value record",
			record: Record{},
			want:   false,
		},
		{
			name:   "fully populated",
			record: Record{InvoiceNumber: "INV-1", CustomerName: "Acme", GrossPrice: "100", Tax: "10", TotalPrice: "110"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.AllSentinel(); got != tt.want {
				t.Errorf("AllSentinel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	r := Record{
		InvoiceNumber: "INV-42",
		CustomerName:  "Globex",
		GrossPrice:    "250.00",
		Tax:           "20.0",
		TotalPrice:    "270.0",
	}

	fields := r.Fields()
	want := []string{"INV-42", "Globex", "250.00", "20.0", "270.0"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}

	if got := FromFields(fields); got != r {
		t.Errorf("FromFields(Fields()) = %+v, want %+v", got, r)
	}
}

func TestFromFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   Record
	}{
		{
			name:   "short row padded with sentinel",
			fields: []string{"INV-1", "Acme"},
			want:   Record{InvoiceNumber: "INV-1", CustomerName: "Acme", GrossPrice: "-", Tax: "-", TotalPrice: "-"},
		},
		{
			name:   "empty row",
			fields: nil,
			want:   Record{InvoiceNumber: "-", CustomerName: "-", GrossPrice: "-", Tax: "-", TotalPrice: "-"},
		},
		{
			name:   "extra columns ignored",
			fields: []string{"INV-1", "Acme", "100", "10", "110", "note", "extra"},
			want:   Record{InvoiceNumber: "INV-1", CustomerName: "Acme", GrossPrice: "100", Tax: "10", TotalPrice: "110"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromFields(tt.fields); got != tt.want {
				t.Errorf("FromFields(%v) = %+v, want %+v", tt.fields, got, tt.want)
			}
		})
	}
}
