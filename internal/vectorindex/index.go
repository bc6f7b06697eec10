package vectorindex

import "fmt"

// flatL2 is an exact brute-force nearest-neighbor index over fixed-width
// vectors, standing in for faiss.IndexFlatL2 (faiss_index_manager.py's
// self.index = faiss.IndexFlatL2(dim)).
type flatL2 struct {
	dim     int
	vectors [][]float32
}

func newFlatL2(dim int) *flatL2 {
	return &flatL2{dim: dim}
}

func (idx *flatL2) add(v []float32) error {
	if len(v) != idx.dim {
		return fmt.Errorf("vectorindex: vector has dimension %d, want %d", len(v), idx.dim)
	}
	idx.vectors = append(idx.vectors, v)
	return nil
}

func (idx *flatL2) len() int { return len(idx.vectors) }

// search returns the topK nearest row positions to query by squared L2
// distance, ascending, mirroring faiss's IndexFlatL2.search(query, k)
// return shape (distances, positions). topK is clamped to the number of
// stored vectors.
func (idx *flatL2) search(query []float32, topK int) (distances []float32, positions []int, err error) {
	if len(query) != idx.dim {
		return nil, nil, fmt.Errorf("vectorindex: query vector has dimension %d, want %d", len(query), idx.dim)
	}
	if topK > len(idx.vectors) {
		topK = len(idx.vectors)
	}
	if topK <= 0 {
		return nil, nil, nil
	}

	allDist := make([]float32, len(idx.vectors))
	for i, v := range idx.vectors {
		allDist[i] = squaredL2(query, v)
	}

	positions = make([]int, len(idx.vectors))
	for i := range positions {
		positions[i] = i
	}
	// Partial selection sort is sufficient here: indices are a handful of
	// thousand chunks at most per repo, and topK is typically single digits.
	for i := 0; i < topK; i++ {
		min := i
		for j := i + 1; j < len(positions); j++ {
			if allDist[positions[j]] < allDist[positions[min]] {
				min = j
			}
		}
		positions[i], positions[min] = positions[min], positions[i]
	}
	positions = positions[:topK]
	distances = make([]float32, topK)
	for i, p := range positions {
		distances[i] = allDist[p]
	}
	return distances, positions, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
