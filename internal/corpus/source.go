package corpus

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/lib/pq"
)

// Source produces the documents of a dataset in docIdx order.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}

// Load reads all documents from src and builds the corpus.
func Load(ctx context.Context, name string, src Source) (*Corpus, error) {
	docs, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", name, err)
	}
	return New(name, docs), nil
}

// JSONLSource reads one JSON document per line.
type JSONLSource struct {
	Path string
}

func (s JSONLSource) Load(ctx context.Context) ([]Document, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	var docs []Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if line%1000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var d Document
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.Path, line, err)
		}
		docs = append(docs, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return docs, nil
}

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// PostgresSource reads documents from a table with columns doc_idx, id,
// title, summary, authors (text[]), published, category_ids (text[]).
type PostgresSource struct {
	DB    *sql.DB
	Table string
}

func (s PostgresSource) Load(ctx context.Context) ([]Document, error) {
	if !tableNameRe.MatchString(s.Table) {
		return nil, fmt.Errorf("invalid table name %q", s.Table)
	}
	query := fmt.Sprintf(
		`SELECT id, title, summary, authors, published, category_ids FROM %s ORDER BY doc_idx`,
		s.Table,
	)
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Summary,
			pq.Array(&d.Authors), &d.Published, pq.Array(&d.CategoryIDs),
		); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return docs, nil
}
