/*
 * @module service/datasource/file_source
 * @description 文件数据源，从配置目录加载 CSV 与 JSON 文件为数据集
 * @architecture 适配器模式 - 文件解析
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 校验文件名 -> 检查格式与大小 -> 解码字符集 -> 解析 -> 构建数据集
 * @rules 只允许目录内的普通文件名，拒绝路径穿越；CSV 空单元格视为空值；
 *        JSON 须为对象数组，列按首次出现顺序；GBK 编码文件转码为 UTF-8
 * @dependencies golang.org/x/text/encoding/simplifiedchinese, github.com/samber/lo
 * @refs service/datasource/source.go, api/controllers/source_controller.go
 */

package datasource

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dataquality-service/service/config"
	"dataquality-service/service/models"

	"github.com/samber/lo"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	encodingGBK = "gbk"
	utf8BOM     = "\xef\xbb\xbf"
)

// FileSource 文件数据源
type FileSource struct {
	baseDir  string
	encoding string
	formats  []string
	maxBytes int64
}

// NewFileSource 根据配置创建文件数据源
func NewFileSource(cfg config.SourcesConfig) *FileSource {
	formats := lo.Map(cfg.SupportedFormats, func(f string, _ int) string {
		return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
	})
	if len(formats) == 0 {
		formats = []string{FormatCSV, FormatJSON}
	}
	return &FileSource{
		baseDir:  cfg.BaseDir,
		encoding: strings.ToLower(cfg.Encoding),
		formats:  formats,
		maxBytes: int64(cfg.MaxSizeMB) * 1024 * 1024,
	}
}

// BaseDir 数据目录
func (s *FileSource) BaseDir() string {
	return s.baseDir
}

// List 列出目录下支持格式的文件，目录不存在时返回空列表
func (s *FileSource) List(ctx context.Context) ([]SourceEntry, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("数据目录不存在", "base_dir", s.baseDir)
			return []SourceEntry{}, nil
		}
		return nil, fmt.Errorf("读取数据目录失败: %w", err)
	}

	files := make([]SourceEntry, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		format, ok := s.formatOf(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, SourceEntry{
			Name:       entry.Name(),
			Type:       "file",
			Format:     format,
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return files, nil
}

// Load 加载指定文件为数据集
func (s *FileSource) Load(ctx context.Context, name string) (*models.Dataset, error) {
	if !isPlainFileName(name) {
		return nil, fmt.Errorf("%w: 非法文件名 %q", ErrNotFound, name)
	}
	format, ok := s.formatOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	path := filepath.Join(s.baseDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("读取文件信息失败: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w: %s (%d 字节)", ErrTooLarge, name, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var columns []string
	var rows []map[string]interface{}
	switch format {
	case FormatCSV:
		columns, rows, err = parseCSV(s.decode(f))
	case FormatJSON:
		columns, rows, err = parseJSON(s.decode(f))
	}
	if err != nil {
		return nil, fmt.Errorf("解析文件 %s 失败: %w", name, err)
	}

	dataset := models.NewDataset("", name, columns, rows)
	dataset.Metadata["sourceFile"] = name
	dataset.Metadata["format"] = format
	dataset.Metadata["encoding"] = s.encodingName()

	slog.Info("文件数据集加载完成", "file", name, "rows", dataset.RowCount, "columns", dataset.ColumnCount)
	return dataset, nil
}

func (s *FileSource) formatOf(name string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" || !lo.Contains(s.formats, ext) {
		return "", false
	}
	if ext != FormatCSV && ext != FormatJSON {
		return "", false
	}
	return ext, true
}

// decode 按配置字符集转码并去掉 UTF-8 BOM
func (s *FileSource) decode(r io.Reader) io.Reader {
	if s.encoding == encodingGBK {
		r = transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	}
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func (s *FileSource) encodingName() string {
	if s.encoding == "" {
		return "utf-8"
	}
	return s.encoding
}

func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}

// parseCSV 首行为表头，单元格按整数、浮点、布尔依次尝试转换
func parseCSV(r io.Reader) ([]string, []map[string]interface{}, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []string{}, []map[string]interface{}{}, nil
		}
		return nil, nil, fmt.Errorf("读取表头失败: %w", err)
	}
	columns := lo.Map(header, func(h string, _ int) string { return strings.TrimSpace(h) })

	rows := make([]map[string]interface{}, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("读取第 %d 行失败: %w", len(rows)+2, err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = parseCell(record[i])
			} else {
				row[column] = nil
			}
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// parseCell 空单元格为 nil；带前导零的数字保持字符串以免丢失
func parseCell(raw string) interface{} {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	if hasLeadingZero(value) {
		return value
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !strings.ContainsAny(value, "xXpPiInN") {
		return f
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

func hasLeadingZero(value string) bool {
	digits := strings.TrimPrefix(value, "-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] != '.'
}

// parseJSON 读取对象数组并保留键的首次出现顺序
func parseJSON(r io.Reader) ([]string, []map[string]interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, nil, err
	}

	columns := make([]string, 0)
	seen := make(map[string]struct{})
	rows := make([]map[string]interface{}, 0)

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, nil, fmt.Errorf("第 %d 个元素不是对象: %w", len(rows)+1, err)
		}
		row := make(map[string]interface{})
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, nil, fmt.Errorf("读取字段名失败: %w", err)
			}
			key, ok := tok.(string)
			if !ok {
				return nil, nil, fmt.Errorf("字段名类型错误: %v", tok)
			}
			var value interface{}
			if err := dec.Decode(&value); err != nil {
				return nil, nil, fmt.Errorf("读取字段 %s 失败: %w", key, err)
			}
			row[key] = normalizeJSONValue(value)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("读取JSON失败: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("JSON格式错误，期望 %q，实际 %v", want, tok)
	}
	return nil
}

func normalizeJSONValue(value interface{}) interface{} {
	num, ok := value.(json.Number)
	if !ok {
		return value
	}
	if i, err := num.Int64(); err == nil {
		return i
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return num.String()
}
