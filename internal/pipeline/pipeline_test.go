package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// --- Gendered grammar ---

func TestSplitGendered(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		male   string
		female string
	}{
		{"comma dash", "Male - 10-12in, Female - 8-10in", "10-12in", "8-10in"},
		{"comma plural dash", "Males - 22-24in, Females - 21-23in", "22-24in", "21-23in"},
		{"comma colon", "Male: 60-70lb, Female: 50-60lb", "60-70lb", "50-60lb"},
		{"comma plural colon", "Males: 60-70lb, Females: 50-60lb", "60-70lb", "50-60lb"},
		{"semicolon dash", "Male - 10in; Female - 9in", "10in", "9in"},
		{"semicolon plural dash", "Males - 10in; Females - 9in", "10in", "9in"},
		{"semicolon colon", "Male: 8-10lb; Female: 6-8lb", "8-10lb", "6-8lb"},
		{"semicolon plural colon", "Males: 8-10lb; Females: 6-8lb", "8-10lb", "6-8lb"},
		{"comma wins over semicolon", "Male: 5lb; approx, Female: 4lb", "5lb; approx", "4lb"},
		{"no prefix", "Male 10in, Female 9in", "Male 10in", "Female 9in"},
		{"extra fields ignored", "Male - 1, Female - 2, Puppy - 3", "1", "2"},
		{"extra whitespace", "  Male -  10in ,   Female - 9in  ", "10in", "9in"},
		{"malformed", "Male and Female 10-12in", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			male, female := SplitGendered(tt.value)
			if male != tt.male || female != tt.female {
				t.Errorf("SplitGendered(%q) = (%q, %q), want (%q, %q)",
					tt.value, male, female, tt.male, tt.female)
			}
		})
	}
}

func TestDelimiter(t *testing.T) {
	tests := map[string]string{
		"a, b":  ",",
		"a; b":  ";",
		"a;b,c": ",",
		"a b":   "",
	}
	for in, want := range tests {
		if got := Delimiter(in); got != want {
			t.Errorf("Delimiter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsGendered(t *testing.T) {
	if !IsGendered("Males: 1; Females: 2") {
		t.Error("expected plural tokens to count as gendered")
	}
	if IsGendered("Male 10in") {
		t.Error("expected value without Female to be ungendered")
	}
	if IsGendered("10-12in") {
		t.Error("expected plain value to be ungendered")
	}
}

// --- Normalizer ---

func fieldsToMap(fields []Field) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Value
	}
	return m
}

func TestNormalizeHeightSplit(t *testing.T) {
	got := fieldsToMap(Normalize([]types.RawAttribute{
		{Label: "height", Value: "Male - 10-12in, Female - 8-10in"},
	}))
	if got["heightMale"] != "10-12in" || got["heightFemale"] != "8-10in" || len(got) != 2 {
		t.Errorf("unexpected fields %v", got)
	}
}

func TestNormalizeHeightUngendered(t *testing.T) {
	got := fieldsToMap(Normalize([]types.RawAttribute{
		{Label: "height", Value: "10-12in"},
	}))
	if got["heightMale"] != "10-12in" || got["heightFemale"] != "10-12in" || len(got) != 2 {
		t.Errorf("unexpected fields %v", got)
	}
}

func TestNormalizeWeightSemicolon(t *testing.T) {
	got := fieldsToMap(Normalize([]types.RawAttribute{
		{Label: "weight", Value: "Males: 8-10lb; Females: 6-8lb"},
	}))
	if got["weightMale"] != "8-10lb" || got["weightFemale"] != "6-8lb" {
		t.Errorf("unexpected fields %v", got)
	}
}

func TestNormalizeMalformedGendered(t *testing.T) {
	got := fieldsToMap(Normalize([]types.RawAttribute{
		{Label: "weight", Value: "Male 8lb Female 6lb"},
	}))
	v, ok := got["weightMale"]
	if !ok || v != "" {
		t.Errorf("expected empty weightMale, got %q (present=%v)", v, ok)
	}
	if got["weightFemale"] != "" {
		t.Errorf("expected empty weightFemale, got %q", got["weightFemale"])
	}
}

func TestNormalizePassThroughAndDrop(t *testing.T) {
	fields := Normalize([]types.RawAttribute{
		{Label: "size", Value: "Medium"},
		{Label: "", Value: "orphan"},
		{Label: "coat", Value: ""},
		{Label: "color", Value: "Black, Tan"},
		{Label: "weight", Value: "8-10lb"},
	})

	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	want := "size,color,weightMale,weightFemale"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("field order = %q, want %q", got, want)
	}
	if fields[1].Value != "Black, Tan" {
		t.Errorf("expected verbatim color, got %q", fields[1].Value)
	}
}

func TestBuildRecord(t *testing.T) {
	rec := BuildRecord("Beagle", []types.RawAttribute{
		{Label: "size", Value: "Small"},
		{Label: "height", Value: "13-15in"},
		{Label: "size", Value: "Medium"},
	})

	want := "name,size,heightMale,heightFemale"
	if got := strings.Join(rec.Keys(), ","); got != want {
		t.Errorf("keys = %q, want %q", got, want)
	}
	if rec.Name() != "Beagle" {
		t.Errorf("unexpected name %q", rec.Name())
	}
	if rec.GetString("size") != "Medium" {
		t.Errorf("expected later size to win, got %q", rec.GetString("size"))
	}
}

func TestCleaners(t *testing.T) {
	if got := CleanLabel("  Weight \n"); got != "weight" {
		t.Errorf("CleanLabel = %q", got)
	}
	if got := CleanValue(" 8 – 10 lbs "); got != "8 - 10 lbs" {
		t.Errorf("CleanValue = %q", got)
	}

	tests := []struct {
		heading  string
		suffixes []string
		want     string
	}{
		{" Abyssinian Cat Breed ", []string{"Cat Breed", "Cat"}, "Abyssinian"},
		{"Manx Cat", []string{"Cat Breed", "Cat"}, "Manx"},
		{"Catahoula Leopard Dog Breed", []string{"Dog Breed", "Dog"}, "Catahoula Leopard"},
		{"Beagle", []string{"Dog Breed", "Dog"}, "Beagle"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.heading, tt.suffixes); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

// --- Pipeline ---

func TestPipelineFromConfig(t *testing.T) {
	p := FromConfig(config.PipelineConfig{
		Trim:           true,
		RequiredFields: []string{"name"},
		DedupByName:    true,
	}, testLogger)
	if p.Len() != 3 {
		t.Fatalf("expected 3 middleware, got %d", p.Len())
	}

	rec := types.NewNamedRecord(" Beagle ")
	out, err := p.Process(rec)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out == nil || out.Name() != "Beagle" {
		t.Fatalf("expected trimmed record, got %v", out)
	}

	dup, _ := p.Process(types.NewNamedRecord("Beagle"))
	if dup != nil {
		t.Error("expected duplicate name to be dropped")
	}

	empty, _ := p.Process(types.NewNamedRecord(""))
	if empty != nil {
		t.Error("expected record with empty name to be dropped")
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "boom" }

func (failingMiddleware) Process(*types.Record) (*types.Record, error) {
	return nil, errors.New("boom")
}

func TestPipelineError(t *testing.T) {
	p := New(testLogger)
	p.Use(failingMiddleware{})

	_, err := p.Process(types.NewNamedRecord("x"))
	var pe *types.PipelineError
	if !errors.As(err, &pe) || pe.Stage != "boom" {
		t.Fatalf("expected PipelineError from stage boom, got %v", err)
	}
}

func TestSanitizeMiddleware(t *testing.T) {
	rec := types.NewNamedRecord("Beagle")
	rec.Set("coat", "Short\n   <b>Dense</b> &amp; smooth")

	out, err := NewSanitizeMiddleware().Process(rec)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := out.GetString("coat"); got != "Short Dense & smooth" {
		t.Errorf("unexpected coat %q", got)
	}
}
