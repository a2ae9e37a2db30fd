/*
 * @module service/agents/consistency_agent
 * @description 一致性智能体，识别各列值的格式类别并按列名标准化
 * @architecture 策略模式 - 质量维度实现
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 格式分类 -> 主导格式占比 -> 记录不一致格式 -> 标准化
 * @rules 分类按固定优先级完全匹配；主导格式并列时取优先级靠前者
 * @dependencies dataquality-service/service/models, golang.org/x/text/cases
 * @refs service/agents/validity_agent.go
 */

package agents

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"dataquality-service/service/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatRule 格式分类规则
type formatRule struct {
	name    string
	pattern *regexp.Regexp
}

var (
	dateUSPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dateEUPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
)

var formatRules = []formatRule{
	{"date_iso", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
	{"date_us", dateUSPattern},
	{"date_eu", dateEUPattern},
	{"phone_international", regexp.MustCompile(`^\+\d{1,3}\s\d{3}\s\d{3}\s\d{4}$`)},
	{"phone_us", regexp.MustCompile(`^\(\d{3}\)\s\d{3}-\d{4}$`)},
	{"phone_dash", regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)},
	{"phone_plain", regexp.MustCompile(`^\d{10}$`)},
	{"email", emailPattern},
	{"integer", regexp.MustCompile(`^\d+$`)},
	{"decimal", regexp.MustCompile(`^\d+\.\d+$`)},
	{"currency", regexp.MustCompile(`^\$\d+(\.\d{2})?$`)},
}

// formatOrder 全部格式类别的优先级顺序
var formatOrder = func() []string {
	order := make([]string, 0, len(formatRules)+4)
	for _, rule := range formatRules {
		order = append(order, rule.name)
	}
	return append(order, "uppercase", "lowercase", "titlecase", "mixed")
}()

// detectFormat 识别值的格式类别
func detectFormat(value string) string {
	value = strings.TrimSpace(value)
	for _, rule := range formatRules {
		if rule.pattern.MatchString(value) {
			return rule.name
		}
	}
	switch {
	case value == strings.ToUpper(value):
		return "uppercase"
	case value == strings.ToLower(value):
		return "lowercase"
	default:
		first, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(first) {
			return "titlecase"
		}
		return "mixed"
	}
}

// ConsistencyAgent 一致性智能体
type ConsistencyAgent struct {
	BaseAgent
}

// NewConsistencyAgent 创建一致性智能体
func NewConsistencyAgent(threshold float64) *ConsistencyAgent {
	return &ConsistencyAgent{
		BaseAgent: newBaseAgent(models.MetricConsistency, "ConsistencyAgent", threshold),
	}
}

// Analyze 分析一致性
func (a *ConsistencyAgent) Analyze(dataset *models.Dataset) (*models.DataQualityResult, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	if dataset.IsEmpty() {
		return a.emptyResult(dataset), nil
	}

	perColumn := make(map[string]float64, len(dataset.Columns))
	inconsistencies := make(map[string][]string)
	dominantFormats := make(map[string]string)
	rates := make([]float64, 0, len(dataset.Columns))
	var issues, recommendations []string

	for _, column := range dataset.Columns {
		consistency, dominant, others := a.columnConsistency(dataset, column)
		perColumn[column] = consistency
		rates = append(rates, consistency)
		if dominant != "" {
			dominantFormats[column] = dominant
		}
		if len(others) > 0 {
			inconsistencies[column] = others
		}

		if consistency < a.threshold {
			issues = append(issues, fmt.Sprintf("Column '%s' has low consistency: %.2f%%", column, consistency*100))
			recommendations = append(recommendations, fmt.Sprintf("Standardize data formats and values in column '%s'", column))
		}
	}

	overall := meanOf(rates)
	result := a.createResult(overall)
	result.Issues = append(result.Issues, issues...)
	result.Recommendations = append(result.Recommendations, recommendations...)
	result.AddDetail("totalRows", len(dataset.Data))
	result.AddDetail("consistencyPerColumn", perColumn)
	result.AddDetail("dominantFormats", dominantFormats)
	result.AddDetail("inconsistencies", inconsistencies)
	result.AddDetail("overallConsistency", overall)
	return result, nil
}

// columnConsistency 返回主导格式占比、主导格式以及其他格式描述
func (a *ConsistencyAgent) columnConsistency(dataset *models.Dataset, column string) (float64, string, []string) {
	counts := make(map[string]int)
	total := 0
	for _, row := range dataset.Data {
		value := row[column]
		if isBlank(value) {
			continue
		}
		counts[detectFormat(toString(value))]++
		total++
	}
	if total == 0 {
		return 1.0, "", nil
	}

	dominant := ""
	for _, format := range formatOrder {
		if counts[format] > counts[dominant] {
			dominant = format
		}
	}

	var others []string
	for _, format := range formatOrder {
		if format != dominant && counts[format] > 0 {
			others = append(others, fmt.Sprintf("%s format (%d occurrences)", format, counts[format]))
		}
	}
	return float64(counts[dominant]) / float64(total), dominant, others
}

// Rectify 按列名标准化姓名、邮箱、电话与日期
func (a *ConsistencyAgent) Rectify(dataset *models.Dataset, _ *models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	titleCaser := cases.Title(language.Und)
	rows := dataset.CopyRows()
	changed := 0
	for _, column := range dataset.Columns {
		name := strings.ToLower(column)
		for _, row := range rows {
			value, ok := row[column]
			if !ok || isBlank(value) {
				continue
			}
			if standardized, ok := standardizeValue(name, toString(value), titleCaser); ok {
				if standardized != value {
					changed++
				}
				row[column] = standardized
			}
		}
	}

	slog.Info("一致性修复完成", "dataset", dataset.Name, "standardized_cells", changed)
	return dataset.WithData(rows), nil
}

// standardizeValue 按列名标准化，返回 false 表示该列不做处理
func standardizeValue(column, value string, titleCaser cases.Caser) (string, bool) {
	value = strings.TrimSpace(value)
	switch {
	case strings.Contains(column, "name"):
		return titleCaser.String(value), true
	case strings.Contains(column, "email"):
		return strings.ToLower(value), true
	case strings.Contains(column, "phone") || strings.Contains(column, "mobile"):
		return standardizePhone(value), true
	case strings.Contains(column, "date"):
		return standardizeDate(value), true
	default:
		return "", false
	}
}

// standardizePhone 10位格式化为 (XXX) XXX-XXXX，以1开头的11位格式化为 +1 (XXX) XXX-XXXX
func standardizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return fmt.Sprintf("+1 (%s) %s-%s", digits[1:4], digits[4:7], digits[7:])
	default:
		return phone
	}
}

// standardizeDate MM/DD/YYYY 与 DD-MM-YYYY 转为 YYYY-MM-DD
func standardizeDate(date string) string {
	switch {
	case dateUSPattern.MatchString(date):
		parts := strings.Split(date, "/")
		return fmt.Sprintf("%s-%s-%s", parts[2], parts[0], parts[1])
	case dateEUPattern.MatchString(date):
		parts := strings.Split(date, "-")
		return fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0])
	default:
		return date
	}
}
