package espw

import (
	"strings"
	"testing"
)

func TestAlleleStrings(t *testing.T) {
	tests := []struct {
		allele Allele
		want   string
		call   Classification
	}{
		{Deletion, "deletion", CallDeletion},
		{FullLength, "full-length", CallFullLength},
		{Insertion, "insertion", CallInsertion},
	}
	for _, tt := range tests {
		if got := tt.allele.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.allele), got, tt.want)
		}
		if got := tt.allele.Classification(); got != tt.call {
			t.Errorf("Classification(%s) = %q, want %q", tt.allele, got, tt.call)
		}
		back, err := ParseAllele(tt.want)
		if err != nil || back != tt.allele {
			t.Errorf("ParseAllele(%q) = %v, %v", tt.want, back, err)
		}
	}

	if _, err := ParseAllele("duplication"); err == nil {
		t.Error("ParseAllele accepted an unknown label")
	}
	if a, err := ParseAllele("full length"); err != nil || a != FullLength {
		t.Errorf("ParseAllele legacy spelling = %v, %v", a, err)
	}
}

func TestNewQuerySet(t *testing.T) {
	valid := func() []AlleleQuery {
		return []AlleleQuery{
			{ID: "d", Allele: Deletion, Seq: strings.Repeat("a", 50), Region: Span{10, 18}},
			{ID: "f", Allele: FullLength, Seq: strings.Repeat("c", 50), Region: Span{10, 19}},
			{ID: "i", Allele: Insertion, Seq: strings.Repeat("g", 50), Region: Span{10, 20}},
		}
	}

	tests := []struct {
		name   string
		mutate func(qs []AlleleQuery) []AlleleQuery
		ok     bool
	}{
		{"valid", func(qs []AlleleQuery) []AlleleQuery { return qs }, true},
		{"missing allele", func(qs []AlleleQuery) []AlleleQuery { return qs[:2] }, false},
		{"duplicate allele", func(qs []AlleleQuery) []AlleleQuery {
			qs[2].Allele = Deletion
			return qs
		}, false},
		{"duplicate id", func(qs []AlleleQuery) []AlleleQuery {
			qs[1].ID = "d"
			return qs
		}, false},
		{"empty id", func(qs []AlleleQuery) []AlleleQuery {
			qs[0].ID = ""
			return qs
		}, false},
		{"empty sequence", func(qs []AlleleQuery) []AlleleQuery {
			qs[0].Seq = ""
			return qs
		}, false},
		{"region past end", func(qs []AlleleQuery) []AlleleQuery {
			qs[0].Region = Span{45, 55}
			return qs
		}, false},
		{"inverted region", func(qs []AlleleQuery) []AlleleQuery {
			qs[0].Region = Span{20, 10}
			return qs
		}, false},
		{"zero start", func(qs []AlleleQuery) []AlleleQuery {
			qs[0].Region = Span{0, 9}
			return qs
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewQuerySet(tt.mutate(valid()))
			if tt.ok && err != nil {
				t.Fatalf("NewQuerySet: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected an error")
				}
				if _, isConfig := err.(*ConfigurationError); !isConfig {
					t.Errorf("error %T is not a ConfigurationError", err)
				}
				return
			}
			if !set.Loaded() {
				t.Error("valid set not marked loaded")
			}
		})
	}
}

func TestQuerySetLookup(t *testing.T) {
	set := testQuerySet(t)

	q, ok := set.ByID("espw-ins")
	if !ok || q.Allele != Insertion {
		t.Errorf("ByID(espw-ins) = %+v, %t", q, ok)
	}
	if _, ok := set.ByID("espw-unknown"); ok {
		t.Error("ByID found a reference that does not exist")
	}

	if got := set.Get(FullLength).ID; got != "espw-full" {
		t.Errorf("Get(FullLength).ID = %q", got)
	}
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		in   string
		want Span
		ok   bool
	}{
		{"118-127", Span{118, 127}, true},
		{"1-1", Span{1, 1}, true},
		{" 10 - 20 ", Span{10, 20}, true},
		{"127-118", Span{}, false},
		{"0-5", Span{}, false},
		{"118", Span{}, false},
		{"a-b", Span{}, false},
		{"10-20x", Span{}, false},
	}
	for _, tt := range tests {
		got, err := ParseSpan(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseSpan(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseSpan(%q) accepted bad input", tt.in)
		}
	}
}

func TestRegionSeq(t *testing.T) {
	set := testQuerySet(t)

	tests := []struct {
		allele Allele
		motif  string
	}{
		{Deletion, "gaaaaaaag"},
		{FullLength, "gaaaaaaaag"},
		{Insertion, "gaaaaaaaaag"},
	}
	for _, tt := range tests {
		if got := set.Get(tt.allele).RegionSeq(); got != tt.motif {
			t.Errorf("RegionSeq(%s) = %q, want %q", tt.allele, got, tt.motif)
		}
	}

	broken := AlleleQuery{Seq: "acgt", Region: Span{3, 9}}
	if got := broken.RegionSeq(); got != "" {
		t.Errorf("RegionSeq out of range = %q, want empty", got)
	}
}
