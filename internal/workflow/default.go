package workflow

const (
	// DefaultPromptNode is the positive CLIP text-encode node of the built-in graph.
	DefaultPromptNode = "6"
	// DefaultSeedNode is the KSampler node of the built-in graph.
	DefaultSeedNode = "3"
)

const defaultNegativePrompt = "色调艳丽，过曝，静态，细节模糊不清，字幕，风格，作品，画作，画面，静止，" +
	"整体发灰，最差质量，低质量，JPEG压缩残留，丑陋的，残缺的，多余的手指，画得不好的手部，画得不好的脸部，" +
	"畸形的，毁容的，形态畸形的肢体，手指融合，静止不动的画面，杂乱的背景，三条腿，背景人很多，倒着走"

// DefaultTemplate returns the WAN 2.1 text-to-video graph exported from the
// generation backend. Node "6" carries the user prompt; node "3" carries the
// sampler seed. The SaveAnimatedWEBP node is the artifact the service serves.
func DefaultTemplate(mode SeedMode) (*Template, error) {
	return NewTemplate(defaultGraph(), DefaultPromptNode, DefaultSeedNode, mode)
}

func defaultGraph() Graph {
	return Graph{
		"3": {
			ClassType: "KSampler",
			Meta:      &NodeMeta{Title: "KSampler"},
			Inputs: map[string]any{
				"seed":         int64(0),
				"steps":        30,
				"cfg":          6,
				"sampler_name": "uni_pc",
				"scheduler":    "simple",
				"denoise":      1,
				"model":        []any{"48", 0},
				"positive":     []any{"6", 0},
				"negative":     []any{"7", 0},
				"latent_image": []any{"40", 0},
			},
		},
		"6": {
			ClassType: "CLIPTextEncode",
			Meta:      &NodeMeta{Title: "CLIP Text Encode (Positive Prompt)"},
			Inputs: map[string]any{
				"text": "",
				"clip": []any{"38", 0},
			},
		},
		"7": {
			ClassType: "CLIPTextEncode",
			Meta:      &NodeMeta{Title: "CLIP Text Encode (Negative Prompt)"},
			Inputs: map[string]any{
				"text": defaultNegativePrompt,
				"clip": []any{"38", 0},
			},
		},
		"8": {
			ClassType: "VAEDecode",
			Meta:      &NodeMeta{Title: "VAE Decode"},
			Inputs: map[string]any{
				"samples": []any{"3", 0},
				"vae":     []any{"39", 0},
			},
		},
		"28": {
			ClassType: "SaveAnimatedWEBP",
			Meta:      &NodeMeta{Title: "SaveAnimatedWEBP"},
			Inputs: map[string]any{
				"filename_prefix": "ComfyUI",
				"fps":             16,
				"lossless":        false,
				"quality":         90,
				"method":          "default",
				"images":          []any{"8", 0},
			},
		},
		"37": {
			ClassType: "UNETLoader",
			Meta:      &NodeMeta{Title: "Load Diffusion Model"},
			Inputs: map[string]any{
				"unet_name":    "wan2.1_t2v_1.3B_fp16.safetensors",
				"weight_dtype": "default",
			},
		},
		"38": {
			ClassType: "CLIPLoader",
			Meta:      &NodeMeta{Title: "Load CLIP"},
			Inputs: map[string]any{
				"clip_name": "umt5_xxl_fp8_e4m3fn_scaled.safetensors",
				"type":      "wan",
				"device":    "default",
			},
		},
		"39": {
			ClassType: "VAELoader",
			Meta:      &NodeMeta{Title: "Load VAE"},
			Inputs: map[string]any{
				"vae_name": "wan_2.1_vae.safetensors",
			},
		},
		"40": {
			ClassType: "EmptyHunyuanLatentVideo",
			Meta:      &NodeMeta{Title: "EmptyHunyuanLatentVideo"},
			Inputs: map[string]any{
				"width":      624,
				"height":     320,
				"length":     53,
				"batch_size": 1,
			},
		},
		"47": {
			ClassType: "SaveWEBM",
			Meta:      &NodeMeta{Title: "SaveWEBM"},
			Inputs: map[string]any{
				"filename_prefix": "ComfyUI",
				"codec":           "vp9",
				"fps":             24,
				"crf":             32,
				"images":          []any{"8", 0},
			},
		},
		"48": {
			ClassType: "ModelSamplingSD3",
			Meta:      &NodeMeta{Title: "ModelSamplingSD3"},
			Inputs: map[string]any{
				"shift": 8,
				"model": []any{"37", 0},
			},
		},
	}
}
