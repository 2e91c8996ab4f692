package poll

import "sort"

// Apply は optionKey の得票を1増やします。
// optionKey が選択肢に含まれない場合はエラーにせず、何も変更せずに false を返します。
func (p *Poll) Apply(optionKey string) bool {
	if !p.HasOption(optionKey) {
		return false
	}
	if p.Votes == nil {
		p.Votes = make(map[string]int)
	}
	p.Votes[optionKey]++
	return true
}

// HasOption は optionKey が選択肢に含まれるかを返します。
func (p *Poll) HasOption(optionKey string) bool {
	for _, opt := range p.Data {
		if opt == optionKey {
			return true
		}
	}
	return false
}

// TotalVotes は全選択肢の得票合計を返します。
func (p *Poll) TotalVotes() int {
	total := 0
	for _, count := range p.Votes {
		total += count
	}
	return total
}

// SortedTallies は (選択肢, 得票数) を得票数の降順で返します。
// 同数の場合は選択肢の元の並び順を保持します。
func (p *Poll) SortedTallies() []TallyEntry {
	entries := make([]TallyEntry, 0, len(p.Data))
	for _, opt := range p.Data {
		entries = append(entries, TallyEntry{
			Option: opt,
			Count:  p.Votes[opt],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
