package blocks

import "context"

const (
	MarqueeBlockID = "drupier_demo_marquee_example_block"

	marqueeMarkup = "<p>Lorem ipsum dolor sit amet consectetur adipisicing elit. Tempora sint vitae alias! Alias sequi ipsam animi deleniti nulla numquam earum in, dignissimos, ipsum.</p>"
)

// StaticBlockRenderer returns the same placeholder paragraph on every call.
type StaticBlockRenderer struct{}

// Render never fails and is safe to cache forever.
func (StaticBlockRenderer) Render() RenderResult {
	return RenderResult{
		Markup:      marqueeMarkup,
		CacheMaxAge: CachePermanent,
	}
}

// MarqueeBlock exposes StaticBlockRenderer as a block plugin.
type MarqueeBlock struct {
	renderer StaticBlockRenderer
}

var _ Block = MarqueeBlock{}

func NewMarqueeBlock() MarqueeBlock {
	return MarqueeBlock{}
}

func (MarqueeBlock) Definition() Definition {
	return Definition{
		ID:          MarqueeBlockID,
		AdminLabel:  "Drupier Demo Marquee",
		Category:    blockCategory,
		LabelKey:    "drupier.block.marquee.label",
		CategoryKey: categoryKey,
	}
}

func (b MarqueeBlock) Build(context.Context) RenderResult {
	return b.renderer.Render()
}
