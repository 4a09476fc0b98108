package domain

type Task struct {
	ID        string `json:"task_id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type Milestone struct {
	ID        string `json:"milestone_id"`
	Title     string `json:"title"`
	WeekLabel string `json:"week_label"`
	Status    string `json:"status"`
	Tasks     []Task `json:"tasks"`
}
