package sym

import (
	"testing"
)

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"name": "Alice", "age": 30, "score": 1.5, "ok": true, "none": null, "tags": ["a", "b"]}`))
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("expected object, got %s", v.Kind())
	}
	if n, _ := v.Get("age").AsInt(); n != 30 {
		t.Errorf("age: expected int 30, got %v", v.Get("age"))
	}
	if f, _ := v.Get("score").AsFloat(); f != 1.5 {
		t.Errorf("score: expected 1.5, got %v", v.Get("score"))
	}
	if !v.Get("none").IsNull() {
		t.Errorf("none: expected null")
	}
	if v.Get("tags").Len() != 2 {
		t.Errorf("tags: expected 2 elements")
	}

	// Key order survives the conversion.
	got := string(MarshalJSON(v, ""))
	want := `{"name":"Alice","age":30,"score":1.5,"ok":true,"none":null,"tags":["a","b"]}`
	if got != want {
		t.Errorf("order lost:\n  got:      %s\n  expected: %s", got, want)
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	if _, err := FromJSON([]byte(`{"a": }`)); err == nil {
		t.Errorf("expected error for invalid JSON")
	}
}

func TestFromYAML(t *testing.T) {
	input := `
name: Alice
age: 30
ratio: 0.5
flag: true
empty: null
tags:
  - a
  - b
nested:
  host: localhost
`
	v, err := FromYAML([]byte(input))
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}
	if s, _ := v.Get("name").AsStr(); s != "Alice" {
		t.Errorf("name: got %v", v.Get("name"))
	}
	if n, _ := v.Get("age").AsInt(); n != 30 {
		t.Errorf("age: expected int 30, got %v", v.Get("age"))
	}
	if f, _ := v.Get("ratio").AsFloat(); f != 0.5 {
		t.Errorf("ratio: got %v", v.Get("ratio"))
	}
	if !v.Get("empty").IsNull() {
		t.Errorf("empty: expected null")
	}
	if v.Get("tags").Len() != 2 {
		t.Errorf("tags: expected 2 elements")
	}
	if s, _ := v.Get("nested").Get("host").AsStr(); s != "localhost" {
		t.Errorf("nested.host: got %v", v.Get("nested"))
	}
}

func TestFromYAML_NonStringKeysStringified(t *testing.T) {
	v, err := FromYAML([]byte("1: one\ntrue: yes\n"))
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}
	if s, _ := v.Get("1").AsStr(); s != "one" {
		t.Errorf("numeric key: got %v", v.Get("1"))
	}
	if v.Get("true") == nil {
		t.Errorf("boolean key missing")
	}
}

func TestFromTOML(t *testing.T) {
	input := `
name = "Alice"
age = 30
pi = 3.14
ok = true
tags = ["a", "b"]

[server]
host = "localhost"
port = 8080
`
	v, err := FromTOML([]byte(input))
	if err != nil {
		t.Fatalf("FromTOML failed: %v", err)
	}
	if s, _ := v.Get("name").AsStr(); s != "Alice" {
		t.Errorf("name: got %v", v.Get("name"))
	}
	if n, _ := v.Get("age").AsInt(); n != 30 {
		t.Errorf("age: expected int 30, got %v", v.Get("age"))
	}
	if v.Get("tags").Len() != 2 {
		t.Errorf("tags: expected 2 elements")
	}
	server := v.Get("server")
	if server == nil || server.Kind() != KindObject {
		t.Fatalf("server table missing")
	}
	if p, _ := server.Get("port").AsInt(); p != 8080 {
		t.Errorf("server.port: got %v", server.Get("port"))
	}
}

func TestFromTOML_Datetime(t *testing.T) {
	v, err := FromTOML([]byte(`ts = 2024-06-01T12:00:00Z`))
	if err != nil {
		t.Fatalf("FromTOML failed: %v", err)
	}
	s, ok := v.Get("ts").AsStr()
	if !ok || s == "" {
		t.Errorf("expected datetime as string, got %v", v.Get("ts"))
	}
}

func TestConvert_EmitsParseableSYM(t *testing.T) {
	v, err := FromJSON([]byte(`{"url": "https://example.com", "version": "1.2", "count": 3}`))
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	text := Emit(v)
	back, err := ParseDocument([]byte(text), "emitted.sym", MapLoader{})
	if err != nil {
		t.Fatalf("emitted SYM does not parse: %v\n%s", err, text)
	}
	if !JSONEqual(ToJSONValue(v), ToJSONValue(back)) {
		t.Errorf("conversion round trip changed the value:\n%s", text)
	}
}
