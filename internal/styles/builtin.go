package styles

var builtin = []StyleConfig{
	{
		ID:          "traditional",
		DisplayName: "伝統切り絵",
		Provider:    ProviderNanoBanana,
		Template:    "Traditional Japanese kirigami paper cutting art: {subject}. Intricate hand-cut paper craft, delicate lace-like patterns, multiple layers of colored washi paper, traditional motifs (sakura, crane, wave), precise blade work, museum quality craftsmanship, soft natural lighting, cultural heritage aesthetic, masterpiece, 8K ultra detailed",
	},
	{
		ID:          "shadow",
		DisplayName: "影絵シアター",
		Provider:    ProviderFlux,
		Template:    "Shadow puppet theater paper art: {subject}. Dramatic silhouette cutting, theatrical lighting from behind, storytelling composition, Indonesian wayang style influence, single layer black paper on illuminated white background, dancing shadows, elegant flowing curves, mystical atmosphere, cinematic quality, 8K resolution",
	},
	{
		ID:          "diorama",
		DisplayName: "立体ジオラマ",
		Provider:    ProviderFlux,
		Template:    "3D paper art shadow box diorama: {subject}. Multiple depth layers (5-7 layers), volumetric paper sculpture, distinct foreground/middleground/background separation, dramatic side lighting creating depth, paper relief technique, miniature scene construction, tilt-shift photography effect, ultra realistic paper texture, 8K resolution",
	},
	{
		ID:          "modern",
		DisplayName: "カラフルモダン",
		Provider:    ProviderTurbo,
		Template:    "Modern colorful paper cut art: {subject}. Vibrant gradient papers, contemporary pop art aesthetic, bold geometric shapes, rainbow color palette, overlapping translucent layers, playful composition, youth culture influence, Matisse cutout style, bright cheerful mood, glossy finish, 8K sharp details",
	},
	{
		ID:          "zen",
		DisplayName: "ミニマル禅",
		Provider:    ProviderTurbo,
		Template:    "Minimalist zen paper cutting: {subject}. Single continuous line cutting, extreme simplicity, negative space mastery, monochromatic (black on white or white on black), Bauhaus influence, meditative composition, elegant restraint, Japanese ma (間) concept, clean razor-sharp edges, 8K precision",
	},
	{
		ID:          "fantasy",
		DisplayName: "幻想ファンタジー",
		Provider:    ProviderNanoBanana,
		Template:    "Fantasy fairytale paper art: {subject}. Magical storybook illustration style, whimsical characters and creatures, enchanted forest or castle setting, layered paper with backlight glow effect, dreamy pastel colors, Lotte Reiniger animation influence, ethereal atmosphere, intricate decorative borders, 8K enchanting details",
	},
	{
		ID:          "nouveau",
		DisplayName: "アールヌーヴォー",
		Provider:    ProviderNanoBanana,
		Template:    "Art Nouveau paper cutting: {subject}. Organic flowing curves, botanical and floral motifs, elegant decorative borders, Alphonse Mucha influence, symmetrical composition, nature-inspired ornamental design, vintage poster aesthetic, gold and jewel tone colors, sophisticated craftsmanship, 8K ornate details",
	},
	{
		ID:          "street",
		DisplayName: "ストリートアート",
		Provider:    ProviderFlux,
		Template:    "Street art paper cutting graffiti: {subject}. Urban contemporary aesthetic, stencil art technique, bold high contrast, Banksy influence, spray paint texture simulation, rebellious attitude, social commentary, layered paper collage, raw edge finishing, underground culture, 8K edgy details",
	},
	{
		ID:          "ultimate_kirie",
		DisplayName: "究極の切り絵",
		Provider:    ProviderNanoBanana,
		Template:    "A masterpiece paper-cut art of \"{subject}\". Style: layered papercut diorama, intricate hand-cut details, clean razor-sharp edges, washi paper texture, soft backlight glow, depth and shadow between layers, paper craft aesthetic, award-winning kirie, ultra high detail",
	},
}
