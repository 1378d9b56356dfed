// Package vcf provides the minimal VCF reading the pipeline agents need:
// line-oriented parsing of records with the INFO keys the filter and context
// stages consume. It is not a general VCF implementation.
package vcf

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Record is one data line of a VCF file.
type Record struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alt    string
	Qual   float64
	Filter string
	Info   map[string]string
	// Line preserves the original text so filtered records can be written
	// back without re-serialization.
	Line string
}

// Consequence returns the functional consequence annotation, if any. Both
// the CSQ and Consequence INFO keys are recognized; only the first
// consequence term of the first annotation is returned.
func (r Record) Consequence() string {
	for _, key := range []string{"Consequence", "CSQ", "ANN"} {
		raw, ok := r.Info[key]
		if !ok || raw == "" {
			continue
		}
		first := strings.Split(raw, ",")[0]
		fields := strings.Split(first, "|")
		for _, f := range fields {
			if strings.HasSuffix(f, "_variant") || strings.HasSuffix(f, "_gained") || strings.HasSuffix(f, "_lost") {
				return f
			}
		}
		return fields[0]
	}
	return ""
}

// PopulationFreq returns the annotated population allele frequency, or -1
// when none is present.
func (r Record) PopulationFreq() float64 {
	for _, key := range []string{"AF", "gnomAD_AF", "MAX_AF"} {
		raw, ok := r.Info[key]
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(strings.Split(raw, ",")[0], 64); err == nil {
			return f
		}
	}
	return -1
}

// Gene returns the annotated gene symbol, if any.
func (r Record) Gene() string {
	for _, key := range []string{"GENE", "Gene", "SYMBOL"} {
		if v, ok := r.Info[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

// ParseLine parses one VCF data line. Header lines must be filtered out by
// the caller.
func ParseLine(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return Record{}, fmt.Errorf("vcf: expected at least 8 columns, got %d", len(fields))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("vcf: bad POS %q: %w", fields[1], err)
	}
	qual := 0.0
	if fields[5] != "." {
		qual, err = strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return Record{}, fmt.Errorf("vcf: bad QUAL %q: %w", fields[5], err)
		}
	}
	return Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Qual:   qual,
		Filter: fields[6],
		Info:   parseInfo(fields[7]),
		Line:   line,
	}, nil
}

func parseInfo(info string) map[string]string {
	out := map[string]string{}
	if info == "." || info == "" {
		return out
	}
	for _, entry := range strings.Split(info, ";") {
		if entry == "" {
			continue
		}
		if key, value, found := strings.Cut(entry, "="); found {
			out[key] = value
		} else {
			out[entry] = "true"
		}
	}
	return out
}

// ReadFile reads all records from a VCF file, returning the header lines
// verbatim alongside the parsed records.
func ReadFile(path string) (headers []string, records []Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("vcf: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			headers = append(headers, line)
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return nil, nil, fmt.Errorf("vcf: %s: %w", path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("vcf: read %s: %w", path, err)
	}
	return headers, records, nil
}

// WriteFile writes headers and records to path in VCF layout.
func WriteFile(path string, headers []string, records []Record) error {
	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	for _, rec := range records {
		b.WriteString(rec.Line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("vcf: write %s: %w", path, err)
	}
	return nil
}
