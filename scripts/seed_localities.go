// seed_localities.go loads a localities CSV into the zipfit catalog through the
// admin API.
//
// Usage:
//
//	go run scripts/seed_localities.go -csv localities.csv -api http://localhost:8700 -token $ZIPFIT_ADMIN_TOKEN
//
// The header row names the columns: zip_code and name are required, any other
// column must be an attribute name (sale_price, school_quality, safety_band, ...).
// Empty cells are left missing. sources is a semicolon-separated list.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type localityRow struct {
	ZipCode    string                 `json:"-"`
	Name       string                 `json:"name"`
	Attributes map[string]interface{} `json:"attributes"`
}

var intColumns = map[string]bool{
	"safety_band":         true,
	"restaurant_count":    true,
	"entertainment_count": true,
}

var floatColumns = map[string]bool{
	"sale_price":               true,
	"rent_price":               true,
	"school_quality":           true,
	"park_density":             true,
	"commute_minutes":          true,
	"diversity_index":          true,
	"convenience_score":        true,
	"percent_new_construction": true,
	"tax_burden":               true,
	"quality_of_life":          true,
}

func main() {
	csvPath := flag.String("csv", "localities.csv", "path to localities CSV")
	apiURL := flag.String("api", "http://localhost:8700", "zipfit API base URL")
	token := flag.String("token", os.Getenv("ZIPFIT_ADMIN_TOKEN"), "admin bearer token")
	dryRun := flag.Bool("dry-run", false, "print rows without uploading")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := parseRows(f)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	log.Printf("parsed %d localities from %s", len(rows), *csvPath)

	if *dryRun {
		for i, row := range rows {
			attrs, _ := json.Marshal(row.Attributes)
			fmt.Printf("[%d] %s %s %s\n", i+1, row.ZipCode, row.Name, attrs)
		}
		return
	}

	client := &http.Client{}
	upserted, skipped := 0, 0
	for _, row := range rows {
		body, _ := json.Marshal(row)
		req, err := http.NewRequest(http.MethodPut, *apiURL+"/api/v1/localities/"+row.ZipCode, bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s: %v", row.ZipCode, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", "seed")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s: %v", row.ZipCode, err)
			skipped++
			continue
		}
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			upserted++
		} else {
			log.Printf("skip %s: status %d %s", row.ZipCode, resp.StatusCode, strings.TrimSpace(string(msg)))
			skipped++
		}
	}

	log.Printf("done: %d upserted, %d skipped", upserted, skipped)
}

func parseRows(r io.Reader) ([]localityRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["zip_code"]; !ok {
		return nil, fmt.Errorf("missing zip_code column")
	}
	if _, ok := col["name"]; !ok {
		return nil, fmt.Errorf("missing name column")
	}

	var rows []localityRow
	for line, rec := range records[1:] {
		row := localityRow{
			ZipCode:    strings.TrimSpace(rec[col["zip_code"]]),
			Name:       strings.TrimSpace(rec[col["name"]]),
			Attributes: make(map[string]interface{}),
		}
		if row.ZipCode == "" {
			return nil, fmt.Errorf("line %d: empty zip_code", line+2)
		}
		for name, i := range col {
			if name == "zip_code" || name == "name" {
				continue
			}
			cell := strings.TrimSpace(rec[i])
			if cell == "" {
				continue
			}
			v, err := parseCell(name, cell)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line+2, err)
			}
			row.Attributes[name] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCell(name, cell string) (interface{}, error) {
	switch {
	case intColumns[name]:
		n, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return n, nil
	case floatColumns[name]:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	case name == "has_town_center":
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return b, nil
	case name == "sources":
		var sources []string
		for _, s := range strings.Split(cell, ";") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("unknown column %q", name)
	}
}
