// Package prompts holds the prompt templates the search sends to the
// generation and judging models. The engine itself never inspects prompt
// wording; everything here is plain text assembly.
package prompts

import (
	"fmt"
	"strings"
)

// Evolve asks the generator for a better, more creative version of the given
// parent recipes, constrained by the contest template.
func Evolve(previousVersions []string, template string) string {
	return fmt.Sprintf(`You are a renowned chef participating in a high-profile international contest: The Pillsbury Bake-Off.
Please create a new recipe according to the instructions in the <instructions> tag and provide your response in the JSON format as specified in the <output_format> tag.

<instructions>
You should create and return a **better, more creative, and different version** of the following recipe and essay: %s. The new recipe must surpass the previous one in creativity, originality, and presentation, while still strictly adhering to all contest rules outlined in the %s.
Your answer must include, without exception, the following components:
- Recipe Idea
- Essay
- Recipe Name
- Ingredients (max 10, excluding pantry staples)
- Instructions (clear, concise, and within 2,000 characters)

For each component (Recipe Idea, Essay, Recipe Name, Ingredients, Instructions), you must provide your response immediately following the qualitative assessment.

Please provide your response strictly in the following JSON format, without any extra commentary.
IMPORTANT: Ensure your response **fully completes** the recipe and ends with }.
</instructions>

<output>
{
    "recipe_idea": <your_recipe_idea>,
    "essay": <your_essay>,
    "recipe_name": <your_recipe_name>,
    "ingredients": <your_recipe_ingredients>,
    "instructions": <your_recipe_instructions>
}
</output>`, strings.Join(previousVersions, "\n"), template)
}

// Judge asks the evaluation model to score a recipe on the seven contest
// dimensions and answer in strict JSON.
func Judge(recipe string) string {
	return fmt.Sprintf(`You are a highly critical judge in the Pillsbury Bake-Off, and your standards are exceptionally high. Your role is to rate recipes with great scrutiny, focusing on both the technical and emotional aspects. Please analyze the following recipe in the <recipe> tag according to the instructions in the <instructions> tag and provide your response in the JSON format specified in the <output_format> tag.

<recipe>
%s
</recipe>

<instructions>
For each of the following dimensions, **first provide a detailed qualitative assessment** followed by a score (1 to 5). **It is mandatory that you provide a score immediately after each qualitative assessment for all dimensions.** You **must** provide a score for each dimension, even if the qualitative assessment is brief.

### Recipe Judging:
1) **Taste**: Evaluate how well-balanced and pleasing the flavors are in the dish, considering aspects like seasoning, texture, and overall flavor profile. (1 low - 5 high)
2) **Appearance**: Rate how visually appealing the dish is, considering factors like color contrast, plating, and presentation. (1 low - 5 high)
3) **Creativity**: Assess the innovation and originality of the recipe, considering ingredient combinations, cooking techniques, and presentation. (1 low - 5 high)
4) **Crowd Appeal**: Determine how likely the dish is to be enjoyed by a wide range of people, considering its familiarity, comfort, and versatility. (1 low - 5 high)

### Story Judging:
1) **How the recipe ties to the story**: Does the recipe reflect the story behind it, making the dish feel authentic to the narrative? (1 low - 5 high)
2) **How the story brings to life a family value, tradition, or memory**: Does the story evoke emotions tied to family or tradition, adding depth to the recipe? (1 low - 5 high)
3) **Demonstration of Passion**: Does the story showcase a deep, genuine emotional connection to the recipe? Does it convey the chef's personal love for the dish, the culinary tradition, or cooking in general? **This score is absolutely crucial** and must be clearly articulated in your assessment. (1 low - 5 high)

### Overall score:
1) **How would you rate the overall recipe with respect to all these dimensions?** (1 low - 5 high)

**Important Notes:**
- **You MUST provide scores immediately after each quantitative assessment: taste, appearance, creativity, crowd_appeal, recipe_ties_story, story_brings_to_life, passion and overall. You must rate all these assessments
Provide your response **only** in this strict JSON format, without any extra commentary.
</instructions>

<output_format>
{
    "taste_quality_assess": <your_assessment>,
    "taste": <score between 1-5>,
    "appearance_quality_assess": <your_assessment>,
    "appearance": <score between 1-5>,
    "creativity_quality_assess": <your_assessment>,
    "creativity": <score between 1-5>,
    "crowd_appeal_quality_assess": <your_assessment>,
    "crowd_appeal": <score between 1-5>,
    "recipe_ties_story_quality_assess": <your_assessment>,
    "recipe_ties_story": <score between 1-5>,
    "story_brings_to_life_quality_assess": <your_assessment>,
    "story_brings_to_life": <score between 1-5>,
    "passion_quality_assess": <your_assessment>,
    "passion": <score between 1-5>,
    "overall_quality_assess": <your_assessment>,
    "overall": <score between 1-5>
}
</output_format>`, recipe)
}

// Creativity asks a panel model to rate a formatted recipe on the four
// Torrance Tests of Creative Thinking dimensions.
func Creativity(recipe string) string {
	return fmt.Sprintf(`You are an expert in evaluating recipe creativity based on the Torrance Tests of Creative Thinking (TTCT). Your task is to assess the following recipe according to the four dimensions of creativity: Fluency, Flexibility, Elaboration, and Originality.

Recipe: '%s'

Please evaluate this recipe based on the following dimensions:

1. **Fluency** - Does the recipe contain multiple distinct creative elements, such as innovative ingredient combinations or unique preparation techniques? (Score: 1 = low, 5 = high)
2. **Flexibility** - Does the recipe showcase versatility in ingredient use, cooking methods, or cultural fusion? (Score: 1 = low, 5 = high)
3. **Elaboration** - How well does the recipe provide depth, explanation, and clarity in its preparation steps and ingredient choices? (Score: 1 = low, 5 = high)
4. **Originality** - How unique is this recipe compared to traditional versions? Does it introduce new concepts, techniques, or ingredient uses? (Score: 1 = low, 5 = high)

For each dimension, please:
- First, provide a **detailed qualitative assessment** of the recipe's creativity.
- Immediately **assign a score** from 1 to 5 (1 being low creativity, 5 being high creativity) for each dimension.
- The **score must be included immediately after the qualitative assessment**.

Your response **must follow this exact JSON format below** with no additional explanations, comments, or text. Do not include any other tags like '</instructions>' or '</output_format>'. The response should be **only** the JSON object.

<output_format>
{
    "fluency_quality_assess": "Your qualitative assessment for Fluency",
    "fluency": "Score between 1-5",
    "flexibility_quality_assess": "Your qualitative assessment for Flexibility",
    "flexibility": "Score between 1-5",
    "elaboration_quality_assess": "Your qualitative assessment for Elaboration",
    "elaboration": "Score between 1-5",
    "originality_quality_assess": "Your qualitative assessment for Originality",
    "originality": "Score between 1-5"
}
</output_format>`, recipe)
}

// Format asks the generator to rewrite a winning recipe in the contest's
// house style, given two reference examples.
func Format(title string, ingredients []string, instructions string, examples [2]string) string {
	return fmt.Sprintf(`You should return a recipe with the exact format as %s and %s.
The title of the recipe is %s.
The ingredients of the recipe are %s.
The instructions of the recipe are %s.
Only return the recipe and nothing else!`,
		examples[0], examples[1], title, strings.Join(ingredients, ", "), instructions)
}
