package models

// SampleDataset 演示用员工数据集，内置空值、非法邮箱、负年龄、重复行和薪资离群值
func SampleDataset() *Dataset {
	columns := []string{"id", "name", "email", "age", "salary", "department"}
	rows := []map[string]interface{}{
		sampleRow(1, "John Doe", "john.doe@example.com", 30, 50000, "Engineering"),
		sampleRow(2, "Jane Smith", "jane.smith@example.com", 25, 45000, "Marketing"),
		sampleRow(3, "", "invalid-email", -5, 60000, "Engineering"),
		sampleRow(4, "Bob Johnson", "bob.johnson@example.com", 35, nil, "Sales"),
		sampleRow(1, "John Doe", "john.doe@example.com", 30, 50000, "Engineering"),
		sampleRow(5, "Alice Brown", "alice.brown@example.com", 28, 1000000, "HR"),
	}

	ds := NewDataset("", "Sample Employee Dataset", columns, rows)
	ds.Metadata["description"] = "Sample dataset with various data quality issues for testing"
	ds.Metadata["source"] = "Generated for demonstration"
	return ds
}

func sampleRow(id int, name, email string, age int, salary interface{}, department string) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"name":       name,
		"email":      email,
		"age":        age,
		"salary":     salary,
		"department": department,
	}
}
