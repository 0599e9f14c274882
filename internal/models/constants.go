package models

// FallbackSentence is the fixed sentence the model is instructed to emit when
// the answer is not derivable from the supplied context. The wording is part
// of the grounding contract, not cosmetic.
const FallbackSentence = "The information is not available in the provided context."

var (
	// GroundedSystemTemplate constrains the model to the retrieved context.
	// %s is the assembled context.
	GroundedSystemTemplate = `You are an assistant that answers questions based on the provided context.
Use ONLY the information from the context below to answer the question.
If the information is not available in the context, say "` + FallbackSentence + `"

Context:
%s`

	// ResumeReviewTemplate is the fixed evaluation prompt for the resume
	// review endpoint. %s is the assembled resume context.
	ResumeReviewTemplate = `You are an expert resume reviewer with extensive experience in hiring and career coaching.
Analyze the following resume content and provide a comprehensive review.

Resume Content:
%s

Please provide:
1. Overall Score (1-10): Rate the resume's overall quality
2. Strengths: List 3-5 key strengths
3. Areas for Improvement: List 3-5 areas that need work
4. Specific Suggestions: Provide actionable recommendations
5. ATS Compatibility: Comment on how well this resume would perform with Applicant Tracking Systems
6. Industry Alignment: Assess how well the resume fits typical industry standards

Format your response in a structured manner with clear sections.`
)

// ResumeRetrievalQuery is the fixed retrieval query used to pull the most
// review-relevant passages out of an uploaded resume.
const ResumeRetrievalQuery = "resume skills experience education"
