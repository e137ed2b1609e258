package service

import (
	"fmt"
	"strings"
)

// Algorithm is a search algorithm the service knows.
type Algorithm struct {
	Key   string
	Label string
}

var Algorithms = []Algorithm{
	{Key: "bfs", Label: "BFS"},
	{Key: "dfs", Label: "DFS"},
	{Key: "dijkstra", Label: "Dijkstra"},
	{Key: "astar", Label: "A*"},
}

// LookupAlgorithm resolves a key or label, case-insensitively.
func LookupAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(a.Key, name) || strings.EqualFold(a.Label, name) {
			return a, nil
		}
	}
	return Algorithm{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
}

// AlgorithmKeys lists the keys in display order.
func AlgorithmKeys() []string {
	keys := make([]string, len(Algorithms))
	for i, a := range Algorithms {
		keys[i] = a.Key
	}
	return keys
}

// NextAlgorithm cycles through Algorithms.
func NextAlgorithm(key string) string {
	for i, a := range Algorithms {
		if a.Key == key {
			return Algorithms[(i+1)%len(Algorithms)].Key
		}
	}
	return Algorithms[0].Key
}
