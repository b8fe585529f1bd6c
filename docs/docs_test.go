package docs_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/swaggo/swag"

	_ "github.com/saulo-duarte/examgate-lambda/docs"
)

func TestRegisteredDocument(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	if !json.Valid([]byte(doc)) {
		t.Fatal("expected a valid JSON document")
	}
	for _, path := range []string{"/attempts/start", "/attempts/{attemptID}/submit", "/auth/login"} {
		if !strings.Contains(doc, `"`+path+`"`) {
			t.Errorf("expected path %s in document", path)
		}
	}
}
