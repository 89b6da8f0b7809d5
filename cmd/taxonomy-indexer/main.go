// cmd/taxonomy-indexer/main.go
//
// Ops tool: syncs the skills taxonomy from Postgres into the Elasticsearch
// index the taxonomy mapper searches.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"skillforge/internal/common/config"
	"skillforge/internal/common/database"
	"skillforge/internal/common/logger"
	"skillforge/internal/models"
	"skillforge/internal/store"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"id":          {"type": "keyword"},
			"name":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"category":    {"type": "keyword"},
			"aliases":     {"type": "text"},
			"description": {"type": "text"}
		}
	}
}`

func main() {
	recreate := flag.Bool("recreate", false, "drop and recreate the index before syncing")
	batchSize := flag.Int("batch-size", 500, "documents per bulk request")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch connection failed", zap.Error(err))
	}

	st := store.New(pg.DB, log)
	skills, err := st.ListTaxonomySkills(ctx)
	if err != nil {
		zapLog.Fatal("taxonomy load failed", zap.Error(err))
	}
	zapLog.Info("taxonomy loaded", zap.Int("skillCount", len(skills)))

	index := cfg.Taxonomy.Index
	if err := ensureIndex(ctx, esClient.Client, index, *recreate); err != nil {
		zapLog.Fatal("index setup failed", zap.String("index", index), zap.Error(err))
	}

	indexed := 0
	for start := 0; start < len(skills); start += *batchSize {
		end := start + *batchSize
		if end > len(skills) {
			end = len(skills)
		}
		if err := bulkIndex(ctx, esClient.Client, index, skills[start:end]); err != nil {
			zapLog.Fatal("bulk index failed", zap.Int("offset", start), zap.Error(err))
		}
		indexed += end - start
		zapLog.Info("batch indexed", zap.Int("indexed", indexed), zap.Int("total", len(skills)))
	}

	zapLog.Info("taxonomy sync complete", zap.String("index", index), zap.Int("indexed", indexed))
}

func ensureIndex(ctx context.Context, esClient *elasticsearch.Client, index string, recreate bool) error {
	if recreate {
		res, err := esapi.IndicesDeleteRequest{
			Index:             []string{index},
			IgnoreUnavailable: esapi.BoolPtr(true),
		}.Do(ctx, esClient)
		if err != nil {
			return err
		}
		res.Body.Close()
	}

	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, esClient)
	if err != nil {
		return err
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}
	return nil
}

func bulkIndex(ctx context.Context, esClient *elasticsearch.Client, index string, skills []models.TaxonomySkill) error {
	var buf bytes.Buffer
	for _, skill := range skills {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_id": skill.ID},
		}
		metaLine, _ := json.Marshal(meta)
		docLine, err := json.Marshal(skill)
		if err != nil {
			return err
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := esapi.BulkRequest{
		Index:   index,
		Body:    &buf,
		Refresh: "wait_for",
	}.Do(ctx, esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk request: %s", res.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return err
	}
	if bulkResp.Errors {
		for _, item := range bulkResp.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s: %s", op.Error.Type, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk request reported errors")
	}
	return nil
}
