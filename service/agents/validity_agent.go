/*
 * @module service/agents/validity_agent
 * @description 有效性智能体，按列名启发式选择格式校验并纠正常见格式错误
 * @architecture 策略模式 - 质量维度实现
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 识别列类别 -> 校验非空值 -> 统计有效比例 -> 纠正无效值
 * @rules 有效率 = 有效值/非空值，无非空值时为1.0；每列最多保留10个无效示例
 * @dependencies dataquality-service/service/models
 * @refs service/agents/consistency_agent.go
 */

package agents

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"dataquality-service/service/models"
)

const (
	// InvalidEmailPlaceholder 无法修复的邮箱替换值
	InvalidEmailPlaceholder = "invalid@example.com"
	// InvalidPhonePlaceholder 无法修复的电话替换值
	InvalidPhonePlaceholder = "0000000000"

	maxInvalidExamples = 10
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})$`)
	phonePattern    = regexp.MustCompile(`^[+]?[1-9]?[0-9]{7,15}$`)
	phoneSeparators = regexp.MustCompile(`[\s()-]`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{2}/\d{2}/\d{4}$|^\d{2}-\d{2}-\d{4}$`)
	nonPhoneChars   = regexp.MustCompile(`[^+0-9]`)
	nonNumericChars = regexp.MustCompile(`[^0-9.-]`)
)

// columnKind 列名启发式得到的列类别
type columnKind int

const (
	kindText columnKind = iota
	kindEmail
	kindPhone
	kindDate
	kindNonNegative
)

// classifyColumn 根据列名判断校验类别，按邮箱、电话、日期、数值的顺序匹配
func classifyColumn(column string) columnKind {
	name := strings.ToLower(column)
	switch {
	case strings.Contains(name, "email") || strings.Contains(name, "mail"):
		return kindEmail
	case strings.Contains(name, "phone") || strings.Contains(name, "mobile") || strings.Contains(name, "tel"):
		return kindPhone
	case strings.Contains(name, "date") || strings.Contains(name, "time"):
		return kindDate
	case strings.Contains(name, "age") || strings.Contains(name, "count") ||
		strings.Contains(name, "amount") || strings.Contains(name, "price"):
		return kindNonNegative
	default:
		return kindText
	}
}

// ValidityAgent 有效性智能体
type ValidityAgent struct {
	BaseAgent
}

// NewValidityAgent 创建有效性智能体
func NewValidityAgent(threshold float64) *ValidityAgent {
	return &ValidityAgent{
		BaseAgent: newBaseAgent(models.MetricValidity, "ValidityAgent", threshold),
	}
}

// Analyze 分析有效性
func (a *ValidityAgent) Analyze(dataset *models.Dataset) (*models.DataQualityResult, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}
	if dataset.IsEmpty() {
		return a.emptyResult(dataset), nil
	}

	perColumn := make(map[string]float64, len(dataset.Columns))
	invalidValues := make(map[string][]string)
	rates := make([]float64, 0, len(dataset.Columns))
	var issues, recommendations []string

	for _, column := range dataset.Columns {
		kind := classifyColumn(column)
		checked, valid := 0, 0
		var invalid []string

		for _, row := range dataset.Data {
			value := row[column]
			if isBlank(value) {
				continue
			}
			checked++
			text := toString(value)
			if isValidValue(kind, text) {
				valid++
			} else {
				invalid = append(invalid, text)
			}
		}

		validity := 1.0
		if checked > 0 {
			validity = float64(valid) / float64(checked)
		}
		perColumn[column] = validity
		rates = append(rates, validity)

		if len(invalid) > 0 {
			examples := invalid
			if len(examples) > maxInvalidExamples {
				examples = examples[:maxInvalidExamples]
			}
			invalidValues[column] = examples
		}

		if validity < a.threshold {
			issues = append(issues, fmt.Sprintf("Column '%s' has low validity: %.2f%% (%d invalid values)", column, validity*100, len(invalid)))
			recommendations = append(recommendations, fmt.Sprintf("Review and correct invalid values in column '%s'", column))
		}
	}

	overall := meanOf(rates)
	result := a.createResult(overall)
	result.Issues = append(result.Issues, issues...)
	result.Recommendations = append(result.Recommendations, recommendations...)
	result.AddDetail("totalRows", len(dataset.Data))
	result.AddDetail("validityPerColumn", perColumn)
	result.AddDetail("invalidValues", invalidValues)
	result.AddDetail("overallValidity", overall)
	return result, nil
}

// Rectify 纠正无效值
func (a *ValidityAgent) Rectify(dataset *models.Dataset, _ *models.DataQualityResult) (*models.Dataset, error) {
	if dataset == nil {
		return nil, ErrNilDataset
	}

	rows := dataset.CopyRows()
	corrected := 0
	for _, column := range dataset.Columns {
		kind := classifyColumn(column)
		for _, row := range rows {
			value, ok := row[column]
			if !ok || isBlank(value) {
				continue
			}
			text := toString(value)
			if isValidValue(kind, text) {
				continue
			}
			row[column] = correctInvalidValue(kind, text)
			corrected++
		}
	}

	slog.Info("有效性修复完成", "dataset", dataset.Name, "corrected_cells", corrected)
	return dataset.WithData(rows), nil
}

func isValidValue(kind columnKind, value string) bool {
	switch kind {
	case kindEmail:
		return emailPattern.MatchString(value)
	case kindPhone:
		return phonePattern.MatchString(phoneSeparators.ReplaceAllString(value, ""))
	case kindDate:
		return datePattern.MatchString(value)
	case kindNonNegative:
		f, ok := toFloat(value)
		return ok && f >= 0
	default:
		return strings.TrimSpace(value) != ""
	}
}

func correctInvalidValue(kind columnKind, value string) interface{} {
	switch kind {
	case kindEmail:
		email := strings.ToLower(strings.TrimSpace(value))
		if !strings.Contains(email, "@") {
			return InvalidEmailPlaceholder
		}
		return email
	case kindPhone:
		cleaned := nonPhoneChars.ReplaceAllString(value, "")
		if len(cleaned) < 7 {
			return InvalidPhonePlaceholder
		}
		return cleaned
	case kindNonNegative:
		num, err := strconv.ParseFloat(nonNumericChars.ReplaceAllString(value, ""), 64)
		if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
			return "0"
		}
		return strconv.FormatFloat(math.Abs(num), 'f', -1, 64)
	default:
		return strings.TrimSpace(value)
	}
}
