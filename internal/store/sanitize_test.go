package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "plain words pass through",
			query:    "dag scheduling",
			expected: "dag scheduling",
		},
		{
			name:     "dot triggers phrase downgrade",
			query:    "airflow.models.dag",
			expected: `"airflow.models.dag"`,
		},
		{
			name:     "parentheses trigger phrase downgrade",
			query:    "DAG(schedule)",
			expected: `"DAG(schedule)"`,
		},
		{
			name:     "colon triggers phrase downgrade",
			query:    "executor: celery",
			expected: `"executor: celery"`,
		},
		{
			name:     "asterisk triggers phrase downgrade",
			query:    "task*",
			expected: `"task*"`,
		},
		{
			name:     "hyphen triggers phrase downgrade",
			query:    "cron-based scheduling",
			expected: `"cron-based scheduling"`,
		},
		{
			name:     "embedded quotes are doubled",
			query:    `run "daily" jobs`,
			expected: `"run ""daily"" jobs"`,
		},
		{
			name:     "uppercase AND operator",
			query:    "dags AND tasks",
			expected: `"dags AND tasks"`,
		},
		{
			name:     "lowercase or operator",
			query:    "sensors or hooks",
			expected: `"sensors or hooks"`,
		},
		{
			name:     "mixed case Not operator",
			query:    "scheduler Not triggerer",
			expected: `"scheduler Not triggerer"`,
		},
		{
			name:     "operator as substring passes through",
			query:    "android notation",
			expected: "android notation",
		},
		{
			name:     "operator prefix word passes through",
			query:    "nothing operands",
			expected: "nothing operands",
		},
		{
			name:     "empty query passes through",
			query:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeQuery(tt.query))
		})
	}
}
