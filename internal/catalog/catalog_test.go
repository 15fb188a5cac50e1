package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Len(t, c.Items, 12)
	assert.Len(t, c.StoryCards, 3)
	assert.ElementsMatch(t, []string{"item_sticker_spark", "item_sticker_wave", "item_sticker_seal"}, c.Stickers())

	var sunhat bool
	for _, it := range c.Items {
		if it.ID == "item_outfit_sunhat" {
			sunhat = true
			assert.Equal(t, 22, it.PricePetals)
			assert.Equal(t, "head", it.Metadata["slot"])
			require.NotNil(t, it.Description)
		}
	}
	assert.True(t, sunhat)

	card := c.StoryCards[0]
	assert.Equal(t, "story_card_breeze", card.ID)
	assert.Equal(t, 1, card.ChoiceATraitDeltas["calm"])
	assert.Equal(t, 1, card.ChoiceBTraitDeltas["grounded"])
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
items:
  - {id: a, sku: a, name: A, category: sticker, price_petals: 1}
  - {id: a, sku: b, name: B, category: sticker, price_petals: 2}
`))
	assert.Error(t, err)
}

func TestParseRejectsNegativePrice(t *testing.T) {
	_, err := Parse([]byte(`
items:
  - {id: a, sku: a, name: A, category: sticker, price_petals: -1}
`))
	assert.Error(t, err)
}

func TestSeedIsRepeatable(t *testing.T) {
	ctx := context.Background()
	c, err := Default()
	require.NoError(t, err)

	s := filestore.OpenMemory()
	shop := s.Repos().Shop
	require.NoError(t, c.Seed(ctx, shop))
	require.NoError(t, c.Seed(ctx, shop))

	items, err := shop.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 12)
	cards, err := shop.ListStoryCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}
