package datamaps

// defaultCSS is embedded in every rendered document unless the
// disableDefaultStyles option is set.
const defaultCSS = `
.datamap path.datamaps-graticule { fill: none; stroke: #777; stroke-width: 0.5px; stroke-opacity: .5; pointer-events: none; }
.datamap .labels { pointer-events: none; }
.datamap path:not(.datamaps-arc), .datamap circle, .datamap line { stroke: #FFFFFF; vector-effect: non-scaling-stroke; stroke-width: 1px; }
.datamaps-legend dt, .datamaps-legend dd { float: left; margin: 0 3px 0 0; }
.datamaps-legend dd { width: 20px; margin-right: 6px; border-radius: 3px; }
.datamaps-legend { padding-bottom: 20px; font-size: 12px; font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; }
.datamaps-hoverover { pointer-events: none; overflow: visible; font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; }
.hoverinfo { display: inline-block; padding: 4px; border-radius: 1px; background-color: #FFF; box-shadow: 1px 1px 5px #CCC; font-size: 12px; border: 1px solid #CCC; }
.hoverinfo hr { border: 1px dotted #CCC; }
`

// hoverScript drives highlight and popups in the browser. It follows the same
// snapshot protocol as Map.Highlight and Map.Unhighlight: the properties
// listed in data-highlight are saved to data-previous-attributes on enter and
// restored on leave.
const hoverScript = `
(function () {
  var svg = document.currentScript && document.currentScript.closest
    ? document.currentScript.closest('svg') : document.querySelector('svg.datamap');
  if (!svg) { return; }
  var popup = svg.querySelector('.datamaps-hoverover');
  var content = popup && popup.querySelector('.datamaps-hoverover-content');
  var legacy = /((MSIE)|(Trident))/.test(navigator.userAgent) || svg.hasAttribute('data-legacy-browser');

  function point(evt) {
    var pt = svg.createSVGPoint();
    pt.x = evt.clientX;
    pt.y = evt.clientY;
    return pt.matrixTransform(svg.getScreenCTM().inverse());
  }

  function enter(evt) {
    var el = evt.currentTarget;
    var hl = el.getAttribute('data-highlight');
    if (hl) {
      var target = JSON.parse(hl), prev = {};
      Object.keys(target).forEach(function (p) { prev[p] = el.style.getPropertyValue(p); });
      el.setAttribute('data-previous-attributes', JSON.stringify(prev));
      Object.keys(target).forEach(function (p) { el.style.setProperty(p, target[p]); });
      if (!legacy && el.parentNode) { el.parentNode.appendChild(el); }
    }
    move(evt);
  }

  function move(evt) {
    var html = evt.currentTarget.getAttribute('data-popup');
    if (!popup || !html) { return; }
    var p = point(evt);
    content.innerHTML = html;
    popup.setAttribute('x', p.x);
    popup.setAttribute('y', p.y + 30);
    popup.setAttribute('visibility', 'visible');
  }

  function leave(evt) {
    var el = evt.currentTarget;
    var prev = el.getAttribute('data-previous-attributes');
    if (prev) {
      var saved = JSON.parse(prev);
      Object.keys(saved).forEach(function (p) {
        if (saved[p]) { el.style.setProperty(p, saved[p]); } else { el.style.removeProperty(p); }
      });
      el.removeAttribute('data-previous-attributes');
    }
    if (popup) { popup.setAttribute('visibility', 'hidden'); }
  }

  svg.querySelectorAll('[data-highlight], [data-popup]').forEach(function (el) {
    el.addEventListener('mouseenter', enter);
    el.addEventListener('mousemove', move);
    el.addEventListener('mouseleave', leave);
  });
})();
`
