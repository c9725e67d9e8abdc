package dbgfmt

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestToYAML(t *testing.T) {
	v, err := Parse(`Job { name: "build", retries: Some(3), steps: ["a", "b"], ratio: NaN, owner: None }`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := ToYAML(v)
	if err != nil {
		t.Fatalf("ToYAML failed: %v", err)
	}

	want := `$type: Job
name: build
retries: 3
steps:
    - a
    - b
ratio: .nan
owner: null
`
	if string(out) != want {
		t.Errorf("expected\n%s\ngot\n%s", want, out)
	}
}

func TestToYAML_DecodesBack(t *testing.T) {
	v, err := Parse(`{"k": [1, -2], (1, 2): Point { x: 1 }}`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := ToYAML(v)
	if err != nil {
		t.Fatal(err)
	}

	var generic map[string]interface{}
	if err := yaml.Unmarshal(out, &generic); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	ks, ok := generic["k"].([]interface{})
	if !ok || len(ks) != 2 || ks[1] != -2 {
		t.Errorf("unexpected k: %#v", generic["k"])
	}
	point, ok := generic["(1, 2)"].(map[string]interface{})
	if !ok || point["$type"] != "Point" || point["x"] != 1 {
		t.Errorf("unexpected composite key entry: %#v", generic)
	}
}
