package service

const defaultChunkSize = 200

// fetchAll reads every item through a paged fetch, chunkSize at a time.
// It stops at the first short page.
func fetchAll[T any](
	fetch func(offset, limit int) ([]T, error),
	chunkSize int,
) ([]T, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var all []T
	offset := 0

	for {
		items, err := fetch(offset, chunkSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if len(items) < chunkSize {
			break
		}
		offset += chunkSize
	}

	return all, nil
}
