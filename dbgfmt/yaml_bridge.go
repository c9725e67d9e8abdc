package dbgfmt

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// ToYAMLNode converts v to a YAML node tree. Structs become mappings with
// a leading `$type` key, following the JSON bridge. Field and entry
// order is preserved.
func ToYAMLNode(v *Value) *yaml.Node {
	if v == nil {
		return nullNode()
	}

	switch v.typ {
	case TypeNone, TypeUnit:
		return nullNode()
	case TypeSome:
		return ToYAMLNode(v.items[0])
	case TypeBool:
		return scalarNode("!!bool", strconv.FormatBool(v.boolVal))
	case TypeInt, TypeUint, TypeBigInt:
		return scalarNode("!!int", v.String())
	case TypeFloat:
		return scalarNode("!!float", yamlFloat(v.floatVal))
	case TypeString:
		return scalarNode("!!str", v.strVal)
	case TypeChar:
		return scalarNode("!!str", string(v.charVal))
	case TypeIdent:
		return scalarNode("!!str", v.strVal)

	case TypeSeq, TypeSet, TypeTuple:
		return seqNode(v.items)

	case TypeTupleStruct:
		n := mapNode()
		addPair(n, scalarNode("!!str", "$type"), scalarNode("!!str", v.strVal))
		addPair(n, scalarNode("!!str", "$items"), seqNode(v.items))
		return n

	case TypeStruct:
		n := mapNode()
		addPair(n, scalarNode("!!str", "$type"), scalarNode("!!str", v.strVal))
		for _, f := range v.fields {
			addPair(n, scalarNode("!!str", f.Name), ToYAMLNode(f.Value))
		}
		return n

	case TypeMap:
		n := mapNode()
		for _, e := range v.entries {
			key := ToYAMLNode(e.Key)
			if key.Kind != yaml.ScalarNode {
				// Complex keys are written inline in debug form.
				key = scalarNode("!!str", e.Key.String())
			}
			addPair(n, key, ToYAMLNode(e.Value))
		}
		return n
	}
	return nullNode()
}

// ToYAML renders v as a YAML document.
func ToYAML(v *Value) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{ToYAMLNode(v)}}
	return yaml.Marshal(doc)
}

func yamlFloat(f float64) string {
	switch s := formatFloat(f); s {
	case "NaN":
		return ".nan"
	case "inf":
		return ".inf"
	case "-inf":
		return "-.inf"
	default:
		return s
	}
}

func nullNode() *yaml.Node {
	return scalarNode("!!null", "null")
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func mapNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func seqNode(items []*Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range items {
		n.Content = append(n.Content, ToYAMLNode(item))
	}
	return n
}

func addPair(n, key, value *yaml.Node) {
	n.Content = append(n.Content, key, value)
}
