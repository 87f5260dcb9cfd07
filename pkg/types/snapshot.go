package types

// Poll:
//   question: string
//   options: { id: number, text: string, votes: number }[]
//   time_limit: number // seconds
//   active: boolean
