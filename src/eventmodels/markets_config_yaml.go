package eventmodels

import (
	"fmt"
	"strings"
	"time"
)

type TokenConfigYAML struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
}

type MarketConfigYAML struct {
	Underlying string    `yaml:"underlying"`
	Strike     string    `yaml:"strike"`
	Base       string    `yaml:"base"`
	Quote      string    `yaml:"quote"`
	Expiry     time.Time `yaml:"expiry"`
}

type MarketsConfigYAML struct {
	Tokens  []TokenConfigYAML  `yaml:"tokens"`
	Markets []MarketConfigYAML `yaml:"markets"`
}

func (c *MarketsConfigYAML) GetToken(symbol string) (*TokenConfigYAML, error) {
	sym1 := strings.ToLower(symbol)
	for i, token := range c.Tokens {
		sym2 := strings.ToLower(token.Symbol)
		if sym1 == sym2 {
			return &c.Tokens[i], nil
		}
	}

	return nil, fmt.Errorf("MarketsConfigYAML: token %s not found", symbol)
}
