// Package report renders scan results: the canonical text report and its
// parser, a colored human view, JSON and SARIF.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/revoverflow/walker/pkg/types"
)

const (
	textHeader    = "~ walker scan results ~"
	textSeparator = "------------------------"
	sourcePrefix  = "# source: "
	structPrefix  = "# structure: "
)

// Block is the result list of one structure over one buffer.
type Block struct {
	Source    string
	Structure string
	Results   []types.Result
}

// WriteText writes the canonical report for a single result list.
func WriteText(w io.Writer, results []types.Result) error {
	return WriteBlocks(w, []Block{{Results: results}})
}

// WriteBlocks writes one canonical report per block. With more than one
// block each is preceded by "# source:" and "# structure:" lines.
func WriteBlocks(w io.Writer, blocks []Block) error {
	bw := bufio.NewWriter(w)
	if len(blocks) == 0 {
		blocks = []Block{{}}
	}

	for i, b := range blocks {
		if len(blocks) > 1 {
			if i > 0 {
				bw.WriteString("\n")
			}
			fmt.Fprintf(bw, "%s%s\n", sourcePrefix, b.Source)
			fmt.Fprintf(bw, "%s%s\n", structPrefix, b.Structure)
		}
		bw.WriteString(textHeader + "\n")
		fmt.Fprintf(bw, "found %d results\n", len(b.Results))
		bw.WriteString(textSeparator + "\n")
		for _, r := range b.Results {
			fmt.Fprintf(bw, "0x%x\n", r.Offset)
		}
		bw.WriteString(textSeparator + "\n")
	}
	return bw.Flush()
}

// ParsedBlock is one report block read back by ParseText.
type ParsedBlock struct {
	Source    string
	Structure string
	Offsets   []int
}

// ParseText reads reports written by WriteBlocks. Comment lines other than
// the source and structure markers and blank lines are ignored.
func ParseText(r io.Reader) ([]ParsedBlock, error) {
	const (
		expectHeader = iota
		expectCount
		expectOpen
		inOffsets
	)

	var (
		blocks  []ParsedBlock
		current ParsedBlock
		count   int
		state   = expectHeader
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if state == expectHeader {
			switch {
			case line == "":
				continue
			case strings.HasPrefix(line, sourcePrefix):
				current.Source = strings.TrimPrefix(line, sourcePrefix)
				continue
			case strings.HasPrefix(line, structPrefix):
				current.Structure = strings.TrimPrefix(line, structPrefix)
				continue
			case strings.HasPrefix(line, "#"):
				continue
			case line == textHeader:
				state = expectCount
				continue
			}
			return nil, fmt.Errorf("line %d: expected report header, got %q", lineNo, line)
		}

		switch state {
		case expectCount:
			n, err := parseCount(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			count = n
			state = expectOpen

		case expectOpen:
			if line != textSeparator {
				return nil, fmt.Errorf("line %d: expected separator, got %q", lineNo, line)
			}
			state = inOffsets

		case inOffsets:
			if line == textSeparator {
				if len(current.Offsets) != count {
					return nil, fmt.Errorf("line %d: report announces %d results, lists %d", lineNo, count, len(current.Offsets))
				}
				blocks = append(blocks, current)
				current = ParsedBlock{}
				state = expectHeader
				continue
			}
			offset, err := parseOffset(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current.Offsets = append(current.Offsets, offset)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != expectHeader {
		return nil, fmt.Errorf("report truncated after line %d", lineNo)
	}
	return blocks, nil
}

func parseCount(line string) (int, error) {
	rest, ok := strings.CutPrefix(line, "found ")
	if !ok {
		return 0, fmt.Errorf("expected result count, got %q", line)
	}
	rest, ok = strings.CutSuffix(rest, " results")
	if !ok {
		return 0, fmt.Errorf("expected result count, got %q", line)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid result count %q", rest)
	}
	return n, nil
}

func parseOffset(line string) (int, error) {
	digits, ok := strings.CutPrefix(line, "0x")
	if !ok || digits == "" {
		return 0, fmt.Errorf("expected hex offset, got %q", line)
	}
	n, err := strconv.ParseUint(digits, 16, 63)
	if err != nil {
		return 0, fmt.Errorf("invalid hex offset %q: %w", line, err)
	}
	return int(n), nil
}
