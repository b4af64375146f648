package compose

// MissingVariable names a required variable that has no value yet.
type MissingVariable struct {
	ProjectBlockID string `json:"projectBlockId"`
	BlockID        string `json:"blockId"`
	Variable       string `json:"variable"`
}

// Report explains why a project is or is not complete.
type Report struct {
	Complete         bool              `json:"complete"`
	MissingBlocks    []string          `json:"missingBlocks"`
	MissingVariables []MissingVariable `json:"missingVariables"`
	Done             int               `json:"done"`
	Total            int               `json:"total"`
}

// Missing lists the required blocks that have no selection and the required
// variables without a non-empty value on any selected block, optional
// blocks included. Done and Total count required blocks; a required block is
// done when it is selected and all its required variables are filled.
func (p *Project) Missing() Report {
	r := Report{MissingBlocks: []string{}, MissingVariables: []MissingVariable{}}

	incomplete := make(map[string]bool)
	for _, pb := range p.OrderedBlocks() {
		for _, v := range pb.Template.Variables {
			if !v.Required || pb.Values[v.Name] != "" {
				continue
			}
			incomplete[pb.Block.ID] = true
			r.MissingVariables = append(r.MissingVariables, MissingVariable{
				ProjectBlockID: pb.ID,
				BlockID:        pb.Block.ID,
				Variable:       v.Name,
			})
		}
	}

	for _, b := range p.ContentType.OrderedBlocks() {
		if !b.Required {
			continue
		}
		r.Total++
		if _, ok := p.BlockFor(b.ID); !ok {
			r.MissingBlocks = append(r.MissingBlocks, b.ID)
			continue
		}
		if !incomplete[b.ID] {
			r.Done++
		}
	}

	r.Complete = len(r.MissingBlocks) == 0 && len(r.MissingVariables) == 0
	return r
}

// IsComplete reports whether every required block is selected and every
// required variable of every selected template has a non-empty value.
func (p *Project) IsComplete() bool {
	return p.Missing().Complete
}

// Progress returns how many required blocks are done out of the total.
func (p *Project) Progress() (done, total int) {
	r := p.Missing()
	return r.Done, r.Total
}
