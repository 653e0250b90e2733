package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrafficClassifierPaidSearch(t *testing.T) {
	classifier := NewTrafficClassifier(nil)

	tests := []struct {
		name     string
		referrer string
		expected bool
	}{
		{"empty referrer", "", false},
		{"google search", "https://www.google.com/search?q=restaurant+jobs", true},
		{"google country domain", "https://www.google.com.sa/", true},
		{"google ad services", "https://www.googleadservices.com/pagead/aclk?sa=L", true},
		{"doubleclick", "https://g.doubleclick.net/aclk", true},
		{"ad syndication", "https://tpc.googlesyndication.com/safeframe/1-0-40/html/container.html", true},
		{"gclid on landing url", "https://apply.example.com/?gclid=EAIaIQobChMI", true},
		{"uppercase host", "HTTPS://WWW.GOOGLE.COM/", true},
		{"facebook", "https://www.facebook.com/", false},
		{"instagram", "https://l.instagram.com/", false},
		{"direct link from partner", "https://jobs.example.org/listing/42", false},
		{"bing", "https://www.bing.com/search?q=jobs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.IsPaidSearch(tt.referrer))
		})
	}
}

func TestTrafficClassifierExtraHints(t *testing.T) {
	classifier := NewTrafficClassifier([]string{"Bing.com", "  ", "utm_source=ads"})

	assert.True(t, classifier.IsPaidSearch("https://www.bing.com/search?q=jobs"))
	assert.True(t, classifier.IsPaidSearch("https://apply.example.com/?utm_source=ads"))
	assert.True(t, classifier.IsPaidSearch("https://www.google.com/"))
	assert.False(t, classifier.IsPaidSearch("https://duckduckgo.com/"))
}
