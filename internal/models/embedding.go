package models

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// EmbeddingDimensions must match the vector(n) column type
const EmbeddingDimensions = 256

// RecipeEmbedding hashes the recipe's title, cuisine, tags and ingredient names
// into a fixed-size, L2-normalised vector. Similar recipes share words, so their
// vectors point the same way.
func RecipeEmbedding(r *Recipe) []float32 {
	vec := make([]float32, EmbeddingDimensions)
	addText(vec, r.Title, 2)
	addText(vec, r.Cuisine, 1.5)
	addText(vec, r.MealType, 1)
	for _, t := range r.Tags {
		addText(vec, t, 1)
	}
	for _, ing := range r.Ingredients {
		addText(vec, ing.Name, 1)
	}
	normalizeVector(vec)
	return vec
}

// Cosine returns the cosine similarity of two vectors, 0 when either is empty
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func addText(vec []float32, s string, weight float32) {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum32()
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[sum%EmbeddingDimensions] += sign * weight
	}
}

func normalizeVector(vec []float32) {
	var n float64
	for _, v := range vec {
		n += float64(v) * float64(v)
	}
	if n == 0 {
		// an all-zero vector has no cosine distance; pin it to the first axis
		vec[0] = 1
		return
	}
	n = math.Sqrt(n)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / n)
	}
}
