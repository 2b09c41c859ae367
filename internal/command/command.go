// Package command holds the string primitives shared by the classifier and
// the pattern learner: key normalization, similarity scoring, and token
// substitution. Purely syntactic; whitespace tokenization only.
package command

import "strings"

// Normalize reduces a command to its pattern key: the first two whitespace
// tokens joined by a single space, or the command unchanged when it has
// fewer than two tokens.
func Normalize(command string) string {
	tokens := strings.Fields(command)
	if len(tokens) >= 2 {
		return tokens[0] + " " + tokens[1]
	}
	return command
}

// FirstToken returns the first whitespace token, or "" for a blank command.
func FirstToken(command string) string {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// SwapFirstToken replaces only the first token of the command, leaving the
// remainder untouched, including its spacing.
func SwapFirstToken(command, replacement string) string {
	trimmed := strings.TrimLeft(command, " \t")
	if trimmed == "" || replacement == "" {
		return command
	}
	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		return replacement
	}
	return replacement + trimmed[end:]
}

// Similarity is a symmetric edit-distance ratio in [0,1]: 1 minus the
// Damerau-Levenshtein distance normalized by the longer length. Identical
// strings score 1.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance is the Damerau-Levenshtein distance (insert, delete,
// substitute, transpose adjacent).
func editDistance(r1, r2 []rune) int {
	rows, cols := len(r1)+1, len(r2)+1
	matrix := make([][]int, rows)
	for i := 0; i < rows; i++ {
		matrix[i] = make([]int, cols)
		matrix[i][0] = i
	}
	for j := 1; j < cols; j++ {
		matrix[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			matrix[i][j] = minInt(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
			if i > 1 && j > 1 && r1[i-1] == r2[j-2] && r1[i-2] == r2[j-1] {
				matrix[i][j] = minInt(matrix[i][j], matrix[i-2][j-2]+cost)
			}
		}
	}
	return matrix[rows-1][cols-1]
}

func minInt(values ...int) int {
	result := values[0]
	for _, v := range values[1:] {
		if v < result {
			result = v
		}
	}
	return result
}
