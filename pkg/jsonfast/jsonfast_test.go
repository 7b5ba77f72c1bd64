package jsonfast

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("with positive capacity", func(t *testing.T) {
		b := New(512)
		if b == nil {
			t.Fatal("New() returned nil")
		}
		if cap(b.buf) < 512 {
			t.Errorf("Expected capacity >= 512, got %d", cap(b.buf))
		}
	})

	t.Run("with zero capacity", func(t *testing.T) {
		b := New(0)
		if cap(b.buf) < 256 {
			t.Errorf("Expected default capacity >= 256, got %d", cap(b.buf))
		}
	})

	t.Run("with negative capacity", func(t *testing.T) {
		b := New(-10)
		if cap(b.buf) < 256 {
			t.Errorf("Expected default capacity >= 256, got %d", cap(b.buf))
		}
	})
}

func TestReset(t *testing.T) {
	b := New(256)
	b.BeginObject()
	b.AddStringField("test", "value")
	b.EndObject()

	if len(b.Bytes()) == 0 {
		t.Error("Expected non-empty buffer before reset")
	}

	b.Reset()

	if len(b.Bytes()) != 0 {
		t.Errorf("Expected empty buffer after reset, got length %d", len(b.Bytes()))
	}
	if b.depth != 0 {
		t.Errorf("Expected depth=0 after reset, got %d", b.depth)
	}
	if !b.first {
		t.Error("Expected first=true after reset")
	}
}

func TestImplicitObject(t *testing.T) {
	b := New(64)
	b.AddIntField("status", 200)
	b.AddStringField("error", "")
	b.EndObject()

	if got := string(b.Bytes()); got != `{"status":200,"error":""}` {
		t.Errorf("Expected implicit object, got %s", got)
	}
}

func TestAddRawJSONField(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		expected string
	}{
		{name: "object", raw: []byte(`{"a":1}`), expected: `{"request":{"a":1}}`},
		{name: "array", raw: []byte(`[1,2]`), expected: `{"request":[1,2]}`},
		{name: "empty becomes null", raw: nil, expected: `{"request":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(64)
			b.BeginObject()
			b.AddRawJSONField("request", tt.raw)
			b.EndObject()
			if got := string(b.Bytes()); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestAddIntAndBoolFields(t *testing.T) {
	b := New(128)
	b.BeginObject()
	b.AddIntField("zero", 0)
	b.AddIntField("negative", -42)
	b.AddInt64Field("timestamp", 1735689600000)
	b.AddBoolField("yes", true)
	b.AddBoolField("no", false)
	b.EndObject()

	expected := `{"zero":0,"negative":-42,"timestamp":1735689600000,"yes":true,"no":false}`
	if got := string(b.Bytes()); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestNestedObject(t *testing.T) {
	b := New(256)
	b.BeginObject()
	b.AddIntField("status", 500)
	b.BeginObjectField("packet")
	b.AddStringField("topic", "_response/applications/list/1")
	b.AddIntField("qos", 2)
	b.EndObject()
	b.AddStringField("after", "x")
	b.EndObject()

	expected := `{"status":500,"packet":{"topic":"_response/applications/list/1","qos":2},"after":"x"}`
	if got := string(b.Bytes()); got != expected {
		t.Fatalf("Expected %s, got %s", expected, got)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(b.Bytes(), &parsed); err != nil {
		t.Fatalf("Generated invalid JSON: %v", err)
	}
}

func TestMultipleFields(t *testing.T) {
	b := New(256)
	b.BeginObject()
	b.AddIntField("status", 400)
	b.AddStringField("error", "appId is required")
	b.AddRawJSONField("request", []byte(`{"appId":""}`))
	b.EndObject()

	expected := `{"status":400,"error":"appId is required","request":{"appId":""}}`
	if got := string(b.Bytes()); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestAddTimeRFC3339Field(t *testing.T) {
	testTime := time.Date(2025, 11, 8, 10, 30, 45, 0, time.UTC)

	b := New(256)
	b.BeginObject()
	b.AddTimeRFC3339Field("startedAt", testTime)
	b.EndObject()

	expected := `{"startedAt":"2025-11-08T10:30:45Z"}`
	if got := string(b.Bytes()); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

type escapeStringTest struct {
	name     string
	input    string
	expected string
}

func TestEscapeString(t *testing.T) {
	tests := []escapeStringTest{
		{name: "no escape needed", input: "hello world", expected: "hello world"},
		{name: "quote", input: `say "hi"`, expected: `say \"hi\"`},
		{name: "backslash", input: `path\to\file`, expected: `path\\to\\file`},
		{name: "newline", input: "line1\nline2", expected: `line1\nline2`},
		{name: "tab", input: "col1\tcol2", expected: `col1\tcol2`},
		{name: "carriage return", input: "line1\rline2", expected: `line1\rline2`},
		{name: "backspace", input: "text\bback", expected: `text\bback`},
		{name: "form feed", input: "page\fbreak", expected: `page\fbreak`},
		{name: "control", input: "a\x01b", expected: `a\u0001b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(256)
			b.buf = append(b.buf, '"')
			b.escapeString(tt.input)
			b.buf = append(b.buf, '"')

			result := string(b.buf[1 : len(b.buf)-1])
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func BenchmarkBuilder(b *testing.B) {
	b.Run("failure envelope", func(b *testing.B) {
		builder := New(256)
		raw := []byte(`{"appId":"youtube"}`)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			builder.Reset()
			builder.BeginObject()
			builder.AddIntField("status", 500)
			builder.AddStringField("error", "device unreachable")
			builder.AddRawJSONField("request", raw)
			builder.EndObject()
			_ = builder.Bytes()
		}
	})

	b.Run("vs json.Marshal", func(b *testing.B) {
		type envelope struct {
			Status  int             `json:"status"`
			Error   string          `json:"error"`
			Request json.RawMessage `json:"request"`
		}
		data := envelope{Status: 500, Error: "device unreachable", Request: json.RawMessage(`{"appId":"youtube"}`)}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(data)
		}
	})
}
