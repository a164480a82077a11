package brief

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Brief is one campaign's input: who the campaign targets and which
// products to produce assets for. Products and assets are paired by
// position; a product without an asset entry gets one generated.
type Brief struct {
	Region    string
	Market    string
	Audience  string
	Message   string
	Products  []string
	Assets    []string
	Languages []string

	// Injected by the loader, not part of the file.
	CampaignName string
	CampaignPath string
}

func (b *Brief) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Region    string     `yaml:"region"`
		Market    string     `yaml:"market"`
		Audience  string     `yaml:"audience"`
		Message   string     `yaml:"message"`
		Product   stringList `yaml:"product"`
		Products  stringList `yaml:"products"`
		Asset     stringList `yaml:"asset"`
		Assets    stringList `yaml:"assets"`
		Languages stringList `yaml:"languages"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	b.Region = raw.Region
	b.Market = raw.Market
	b.Audience = raw.Audience
	b.Message = raw.Message
	b.Products = firstNonEmpty(raw.Products, raw.Product)
	b.Assets = firstNonEmpty(raw.Assets, raw.Asset)
	b.Languages = raw.Languages
	return nil
}

// AssetFor returns the asset filename paired with the product at the
// given index, or "" when the brief names none.
func (b *Brief) AssetFor(index int) string {
	if index < 0 || index >= len(b.Assets) {
		return ""
	}
	return strings.TrimSpace(b.Assets[index])
}

func (b *Brief) applyDefaults() {
	if len(b.Languages) == 0 {
		b.Languages = []string{"English"}
	}
}

// stringList accepts both a single scalar and a sequence, so briefs may
// say either `product: Tea` or `products: [Tea, Coffee]`.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		single = strings.TrimSpace(single)
		if single == "" {
			*s = nil
			return nil
		}
		*s = stringList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = stringList(many)
		return nil
	default:
		return fmt.Errorf("expected string or list, got yaml kind %d", value.Kind)
	}
}

func firstNonEmpty(lists ...stringList) []string {
	for _, list := range lists {
		if len(list) > 0 {
			return list
		}
	}
	return nil
}
