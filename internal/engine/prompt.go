package engine

// LLM prompt templates: data only, no logic.

// socialPostPrompt is used by the reduced flow.
// Args: platform, intent, transcript.
const socialPostPrompt = `You are a social media copywriter. Turn the video transcript below into a post for %s.

Instruction from the author: %s

Rules:
- Keep it concise and native to the platform (length, tone, hashtags, line breaks)
- Use only facts that appear in the transcript
- Output the post text only, no preamble or explanation

Transcript:
%s`

// simplePostPrompt is used by the simple flow.
// Args: transcript, platform, intent.
const simplePostPrompt = `Here is a new video transcript:
%s

Generate engaging content suitable for %s based on this transcript.
%s`

// DefaultIntent is used when the caller gives no instruction.
const DefaultIntent = "Write an engaging post that summarizes the key takeaways of the video."
