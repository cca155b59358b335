// Package category 楽天レシピのカテゴリ表（名稱 TAB ID）
package category

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed default_categories.tsv
var defaultTSV string

// Category 一筆カテゴリ
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table 依檔案順序保存的カテゴリ表
type Table struct {
	entries []Category
	byID    map[string]int
}

// Load 讀取 TSV 檔
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open category table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Default 內建的大カテゴリ表
func Default() *Table {
	t, err := Parse(strings.NewReader(defaultTSV))
	if err != nil {
		panic(fmt.Sprintf("category: embedded table: %v", err))
	}
	return t
}

// Parse 解析「名稱<TAB>ID」格式。欄位不足或空白的行略過；重複 ID 沿用第一次出現的位置，名稱取最後一筆。
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comment = '#'

	t := &Table{byID: make(map[string]int)}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse category table: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(row[0], "\uFEFF"))
		id := strings.TrimSpace(row[1])
		if name == "" || id == "" {
			continue
		}
		if i, dup := t.byID[id]; dup {
			t.entries[i].Name = name
			continue
		}
		t.byID[id] = len(t.entries)
		t.entries = append(t.entries, Category{ID: id, Name: name})
	}
	return t, nil
}

// Len 筆數
func (t *Table) Len() int {
	return len(t.entries)
}

// Categories 依順序返回複本
func (t *Table) Categories() []Category {
	out := make([]Category, len(t.entries))
	copy(out, t.entries)
	return out
}

// Name 依 ID 查名稱
func (t *Table) Name(id string) (string, bool) {
	i, ok := t.byID[id]
	if !ok {
		return "", false
	}
	return t.entries[i].Name, true
}

// PromptList 每行「ID: 名稱」，供提示詞使用
func (t *Table) PromptList() string {
	var b strings.Builder
	for i, c := range t.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.ID)
		b.WriteString(": ")
		b.WriteString(c.Name)
	}
	return b.String()
}
