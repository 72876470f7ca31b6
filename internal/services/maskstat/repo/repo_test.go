package repo

import "maskstat/internal/services/maskstat/domain"

func sampleTable() domain.ResultTable {
	return domain.ResultTable{
		RunID: "run-7",
		Records: []domain.ImageRecord{
			{
				Ref: "a.fits", ExpNum: 229686, MJD: 56543.0191944, Band: "g",
				Nite: 20130910, CCDNum: 1, ReqNum: 1105, AttNum: 1, UnitName: "D00229686",
				Bits: []uint64{1, 2, 4}, NClust: []int{2, 1, 7}, Area: []int{10, 3, 44},
			},
			{
				Ref: "b.fits", ExpNum: 229690, MJD: 56543, Band: "r",
				Nite: 20130910, CCDNum: 2, ReqNum: 1105, AttNum: 2, UnitName: "D00229690",
			},
		},
	}
}
