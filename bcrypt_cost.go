//go:build !race

package walks

func passwordHashCost() int {
	return 14
}
