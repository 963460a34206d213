package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// marshalNode builds an explicit node tree for serialization. Plain struct
// or map marshaling cannot express the document's invariants: version keys
// must ascend by semantic version, project keys lexicographically, and code
// scalars must be quoted YAML-safely, deterministically.
func (d *Document) marshalNode() *yaml.Node {
	root := mappingNode()
	appendKeyed(root, "acceptedBreaks", d.acceptedBreaksNode())
	appendKeyed(root, "versionOverrides", d.versionOverridesNode())
	return root
}

func (d *Document) acceptedBreaksNode() *yaml.Node {
	node := mappingNode()

	versions := make([]string, 0, len(d.AcceptedBreaks))
	for v := range d.AcceptedBreaks {
		versions = append(versions, v)
	}
	sortVersions(versions)

	for _, version := range versions {
		byProject := d.AcceptedBreaks[version]

		projects := make([]string, 0, len(byProject))
		for p := range byProject {
			projects = append(projects, p)
		}
		sort.Strings(projects)

		versionNode := mappingNode()
		for _, project := range projects {
			seq := &yaml.Node{Kind: yaml.SequenceNode}
			for _, ab := range byProject[project] {
				entry := mappingNode()
				appendKeyed(entry, "code", scalarNode(ab.Code))
				appendKeyed(entry, "justification", scalarNode(ab.Justification))
				seq.Content = append(seq.Content, entry)
			}
			appendKeyed(versionNode, project, seq)
		}
		appendKeyed(node, version, versionNode)
	}

	return flowIfEmpty(node)
}

func (d *Document) versionOverridesNode() *yaml.Node {
	node := mappingNode()

	versions := make([]string, 0, len(d.VersionOverrides))
	for v := range d.VersionOverrides {
		versions = append(versions, v)
	}
	sortVersions(versions)

	for _, version := range versions {
		appendKeyed(node, version, scalarNode(d.VersionOverrides[version]))
	}

	return flowIfEmpty(node)
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

// flowIfEmpty renders an empty mapping as {} instead of an empty block.
func flowIfEmpty(node *yaml.Node) *yaml.Node {
	if len(node.Content) == 0 {
		node.Style = yaml.FlowStyle
	}
	return node
}

func appendKeyed(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, scalarNode(key), value)
}

// scalarNode single-quotes values containing a colon or a quote so break
// codes round-trip; everything else stays plain.
func scalarNode(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	if strings.ContainsAny(s, ":'\"") {
		node.Style = yaml.SingleQuotedStyle
	}
	return node
}

// encode renders the node tree with two-space indentation.
func encode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalizing document: %w", err)
	}
	return buf.Bytes(), nil
}
