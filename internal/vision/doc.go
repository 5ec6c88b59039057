// Package vision asks a remote vision-language model whether an image
// contains a handwritten signature.
//
// The answer is only an existence signal. Models are not asked for
// coordinates because the boxes they return are unreliable; locating the
// signature is left to package detection.
//
// Two backends are available:
//   - "glm": any OpenAI-compatible chat-completions endpoint, by default
//     Zhipu's glm-4v-flash
//   - "gemini": Google Gemini through the genai SDK
//
// Each Verify call is a single request with no retries. Callers decide what
// an error means; the pipeline treats it as "verification unavailable".
package vision
