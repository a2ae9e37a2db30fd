package agents

import "sort"

// sortedCopy 返回升序副本
func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// median 中位数，偶数个取中间两数平均
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// percentile 分位数，在相邻秩之间线性插值：位置 = p/100 * (n-1)
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(n-1)
	lower := int(pos)
	if lower >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// tukeyFences 计算 Q1/Q3 与上下围栏
func tukeyFences(values []float64) (q1, q3, lower, upper float64) {
	sorted := sortedCopy(values)
	q1 = percentile(sorted, 25)
	q3 = percentile(sorted, 75)
	iqr := q3 - q1
	return q1, q3, q1 - 1.5*iqr, q3 + 1.5*iqr
}
