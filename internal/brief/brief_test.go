package brief

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBriefSingularForms(t *testing.T) {
	var b Brief
	err := yaml.Unmarshal([]byte("product: Espresso Machine\nasset: espresso.png\n"), &b)
	require.NoError(t, err)
	require.Equal(t, []string{"Espresso Machine"}, b.Products)
	require.Equal(t, []string{"espresso.png"}, b.Assets)
}

func TestBriefPluralWinsOverSingular(t *testing.T) {
	var b Brief
	err := yaml.Unmarshal([]byte("product: Old\nproducts:\n  - New One\n  - New Two\n"), &b)
	require.NoError(t, err)
	require.Equal(t, []string{"New One", "New Two"}, b.Products)
}

func TestBriefEmptyScalarIgnored(t *testing.T) {
	var b Brief
	err := yaml.Unmarshal([]byte("product: \"\"\nmessage: Hello\n"), &b)
	require.NoError(t, err)
	require.Empty(t, b.Products)
	require.Equal(t, "Hello", b.Message)
}

func TestBriefRejectsMappingWhereListExpected(t *testing.T) {
	var b Brief
	err := yaml.Unmarshal([]byte("products:\n  name: Tea\n"), &b)
	require.Error(t, err)
}

func TestAssetForPositionalPairing(t *testing.T) {
	b := Brief{
		Products: []string{"Tea", "Coffee", "Cocoa"},
		Assets:   []string{"tea.png", " coffee.png "},
	}

	require.Equal(t, "tea.png", b.AssetFor(0))
	require.Equal(t, "coffee.png", b.AssetFor(1))
	require.Equal(t, "", b.AssetFor(2))
	require.Equal(t, "", b.AssetFor(-1))
}
