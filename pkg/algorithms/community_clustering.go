package algorithms

import (
	"context"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// LocalClusteringCoefficient computes the local clustering coefficient of
// every node: closed neighbor pairs over possible neighbor pairs. Nodes with
// fewer than two neighbors score 0.
func LocalClusteringCoefficient(ctx context.Context, g graph.Graph) ([]float64, error) {
	triangles, err := CountTriangles(ctx, g)
	if err != nil {
		return nil, err
	}
	return triangles.ClusteringCoefficients, nil
}

// AverageClusteringCoefficient computes the average clustering coefficient
func AverageClusteringCoefficient(ctx context.Context, g graph.Graph) (float64, error) {
	coefficients, err := LocalClusteringCoefficient(ctx, g)
	if err != nil {
		return 0.0, err
	}

	if len(coefficients) == 0 {
		return 0.0, nil
	}

	sum := 0.0
	for _, coef := range coefficients {
		sum += coef
	}

	return sum / float64(len(coefficients)), nil
}
