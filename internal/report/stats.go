package report

import (
	"fmt"
	"io"
	"strings"

	"kachef/internal/nodes"
)

// Stats counts the nodes of a subtree. A topic counts itself.
type Stats struct {
	Topics    int
	Videos    int
	Exercises int
}

// Count returns the stats of the subtree rooted at n.
func Count(n nodes.Node) Stats {
	var s Stats
	nodes.Walk(n, func(child nodes.Node, _ int) {
		switch child.Kind() {
		case nodes.KindTopic:
			s.Topics++
		case nodes.KindVideo:
			s.Videos++
		case nodes.KindExercise:
			s.Exercises++
		}
	})
	return s
}

// String lists the non-zero counts, e.g. "3 topics, 12 exercises".
func (s Stats) String() string {
	var parts []string
	for _, item := range []struct {
		n    int
		name string
	}{{s.Topics, "topics"}, {s.Videos, "videos"}, {s.Exercises, "exercises"}} {
		if item.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", item.n, item.name))
		}
	}
	return strings.Join(parts, ", ")
}

// PrintTree writes n and its descendants down to maxLevel levels, one line
// per node: indentation, title, slug and stats for topics.
func PrintTree(w io.Writer, n nodes.Node, maxLevel int) error {
	var err error
	var visit func(node nodes.Node, level int)
	visit = func(node nodes.Node, level int) {
		if err != nil || level >= maxLevel {
			return
		}
		base := node.Base()
		line := strings.Repeat("  ", level) + base.Title + " (" + base.Slug + ")"
		topic, isTopic := node.(*nodes.Topic)
		if isTopic {
			if stats := Count(node).String(); stats != "" {
				line += " " + stats
			}
			if topic.Curriculum != "" {
				line += " CURRICULUM=" + topic.Curriculum
			}
		}
		if _, werr := io.WriteString(w, line+"\n"); werr != nil {
			err = fmt.Errorf("write tree: %w", werr)
			return
		}
		if isTopic {
			for _, child := range topic.Children {
				visit(child, level+1)
			}
		}
	}
	visit(n, 0)
	return err
}

// TopLevel returns one table row per child of root with its stats.
func TopLevel(root *nodes.Topic) string {
	rows := make([][]string, 0, len(root.Children))
	for _, child := range root.Children {
		s := Count(child)
		rows = append(rows, []string{
			child.Base().Slug,
			child.Base().Title,
			fmt.Sprint(s.Topics),
			fmt.Sprint(s.Videos),
			fmt.Sprint(s.Exercises),
		})
	}
	return Table(
		[]string{"Slug", "Title", "Topics", "Videos", "Exercises"},
		rows,
		[]Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	)
}
