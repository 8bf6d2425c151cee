package main

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/query"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	mode := pflag.String("mode", "api", "Query mode: 'api' to query via HTTP API, 'direct' to query ClickHouse directly.")
	apiAddr := pflag.String("api", "http://localhost:8080", "Base URL of fs-api.")
	chHost := pflag.String("ch-host", "localhost", "ClickHouse host for direct mode.")
	chPort := pflag.Int("ch-port", 9000, "ClickHouse native port for direct mode.")
	test := pflag.String("test", "", "Test name filter (optional).")
	flavor := pflag.String("flavor", "", "TCP flavor filter (optional).")
	medium := pflag.String("medium", "", "Medium filter, wlan or lan (optional).")
	pflag.Parse()

	values := url.Values{}
	for k, v := range map[string]string{"test": *test, "flavor": *flavor, "medium": *medium} {
		if v != "" {
			values.Set(k, v)
		}
	}

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiAddr, values)
	case "direct":
		directQueryClickHouse(config.ClickHouseConfig{Host: *chHost, Port: *chPort, Database: "default", Username: "default"}, values)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

func queryViaAPI(base string, values url.Values) {
	apiURL := base + "/api/v1/samples"
	if len(values) > 0 {
		apiURL += "?" + values.Encode()
	}
	log.Printf("Sending request to %s", apiURL)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, respBody, "", "  "); err != nil {
		log.Fatalf("Error formatting JSON response: %v", err)
	}
	fmt.Println(prettyJSON.String())
}

func directQueryClickHouse(cfg config.ClickHouseConfig, values url.Values) {
	q, err := query.NewClickHouseQuerier(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	f, err := query.ParseFilter(values)
	if err != nil {
		log.Fatalf("Invalid filter: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rows, err := q.Samples(ctx, f)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		log.Fatalf("Error encoding rows: %v", err)
	}
}
