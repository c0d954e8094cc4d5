package packer

const none = -1

// node is a region of the canvas. A free node is a leaf; a used node has
// a rectangle at its origin and two children covering the rest of it.
type node struct {
	x, y          float64
	width, height float64
	used          bool
	down, right   int
}

// placement is the outcome of putting one block in the tree.
type placement struct {
	x, y   float64
	ok     bool
	reason string
}

func placed(x, y float64) placement {
	return placement{x: x, y: y, ok: true}
}

func failed(reason string) placement {
	return placement{reason: reason}
}

func (p *Packer) alloc(n node) int {
	n.down, n.right = none, none
	p.nodes = append(p.nodes, n)
	return len(p.nodes) - 1
}

// find returns the first free leaf under n that can hold width x height,
// searching right before down.
func (p *Packer) find(n int, width, height float64) int {
	if n == none {
		return none
	}
	nd := p.nodes[n]
	if nd.used {
		if found := p.find(nd.right, width, height); found != none {
			return found
		}
		return p.find(nd.down, width, height)
	}
	if width <= nd.width && height <= nd.height {
		return n
	}
	return none
}

// split marks n used and carves the strips below and beside the placed
// rectangle out of it.
func (p *Packer) split(n int, width, height float64) placement {
	nd := p.nodes[n]
	down := p.alloc(node{
		x:      nd.x,
		y:      nd.y + height,
		width:  nd.width,
		height: nd.height - height,
	})
	right := p.alloc(node{
		x:      nd.x + width,
		y:      nd.y,
		width:  nd.width - width,
		height: height,
	})

	p.nodes[n].used = true
	p.nodes[n].down = down
	p.nodes[n].right = right
	return placed(nd.x, nd.y)
}

func (p *Packer) grow(width, height float64) placement {
	root := p.nodes[p.root]

	canGrowBottom := width <= root.width
	canGrowRight := height <= root.height
	// Prefer the direction that keeps the canvas from getting too wide
	// or too tall.
	shouldGrowRight := canGrowRight && root.height >= root.width+width
	shouldGrowBottom := canGrowBottom && root.width >= root.height+height

	switch {
	case shouldGrowRight:
		return p.growRight(width, height)
	case shouldGrowBottom:
		return p.growBottom(width, height)
	case canGrowRight:
		return p.growRight(width, height)
	case canGrowBottom:
		return p.growBottom(width, height)
	}
	return failed("block exceeds canvas in both directions")
}

func (p *Packer) growRight(width, height float64) placement {
	old := p.nodes[p.root]
	strip := p.alloc(node{x: old.width, y: 0, width: width, height: old.height})
	next := p.alloc(node{width: old.width + width, height: old.height, used: true})
	p.nodes[next].down = p.root
	p.nodes[next].right = strip
	p.root = next
	return p.placeAfterGrow(width, height, "right")
}

func (p *Packer) growBottom(width, height float64) placement {
	old := p.nodes[p.root]
	strip := p.alloc(node{x: 0, y: old.height, width: old.width, height: height})
	next := p.alloc(node{width: old.width, height: old.height + height, used: true})
	p.nodes[next].right = p.root
	p.nodes[next].down = strip
	p.root = next
	return p.placeAfterGrow(width, height, "bottom")
}

func (p *Packer) placeAfterGrow(width, height float64, direction string) placement {
	n := p.find(p.root, width, height)
	if n == none {
		return failed("no free region after growing " + direction)
	}
	return p.split(n, width, height)
}
